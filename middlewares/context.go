// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"cinema-server/commons"
	"cinema-server/storage"
	"cinema-server/tokens"

	"github.com/labstack/echo/v4"
)

const (
	settingsKey = "settings"
	storageKey  = "storage"
	userKey     = "user"
)

// Inject makes the process settings and the object store available to
// every handler.
func Inject(settings *commons.Settings, store storage.Storage) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(settingsKey, settings)
			c.Set(storageKey, store)
			return next(c)
		}
	}
}

func GetSettings(c echo.Context) *commons.Settings {
	settings, _ := c.Get(settingsKey).(*commons.Settings)
	return settings
}

func GetStorage(c echo.Context) storage.Storage {
	store, _ := c.Get(storageKey).(storage.Storage)
	return store
}

func TokenService(c echo.Context) *tokens.Service {
	return tokens.NewService(GetSettings(c).SecretKey, tokens.DefaultTTL)
}
