// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"os"
	"slices"

	"cinema-server/commons"
	"cinema-server/db"
	"cinema-server/routes"
	"cinema-server/storage"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	commons.LoadEnvFile()
	commons.InitLogger()

	settings, err := commons.LoadSettings()
	if err != nil {
		commons.Logger.Fatal("Invalid configuration: ", err)
	}

	e := echo.New()
	e.HideBanner = true

	e.Logger.SetLevel(commons.Logger.Level())
	e.Logger.SetHeader("${time_rfc3339} ${level} ${short_file}:${line} -")

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logMsg := func(format string, args ...any) {
				switch {
				case v.Status >= 500:
					e.Logger.Errorf(format, args...)
				case v.Status >= 400:
					e.Logger.Warnf(format, args...)
				default:
					e.Logger.Infof(format, args...)
				}
			}
			logMsg("%s %s - %d - %.2fms - %s",
				v.Method,
				v.URI,
				v.Status,
				float64(v.Latency.Microseconds())/1000.0,
				v.RemoteIP,
			)
			return nil
		},
	}))
	debugMode := slices.Contains(os.Args[1:], "--debug")
	if debugMode {
		e.Logger.Warn("Debug mode is enabled.")
		e.Debug = true
		e.Logger.SetLevel(log.DEBUG)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit(settings.MaxUploadSize)))

	db.InitDB()
	if slices.Contains(os.Args[1:], "--migrate-db") || commons.GetEnvBool("AUTO_MIGRATE", true) {
		commons.Logger.Debug("Running migrations on startup")
		db.MigrateDB()
	}

	if adminEmail := commons.GetEnv("ADMIN_EMAIL"); adminEmail != "" {
		if err := db.SeedAdmin(db.Conn, adminEmail, commons.GetEnv("ADMIN_PASSWORD")); err != nil {
			commons.Logger.Fatal("Failed to seed admin account: ", err)
		}
	}

	store, err := storage.NewStorage(settings.Storage)
	if err != nil {
		commons.Logger.Fatal("Failed to initialise storage: ", err)
	}

	routes.RegisterRoutes(e, settings, store)

	port := commons.GetEnv("PORT")
	if port == "" {
		port = ":8000"
	}
	if port[0] != ':' {
		port = ":" + port
	}
	e.Logger.Fatal(e.Start(port))
}

// bodyLimit leaves room for multipart framing on top of the upload limit.
func bodyLimit(maxUpload int64) string {
	return fmt.Sprintf("%dM", maxUpload>>20+1)
}
