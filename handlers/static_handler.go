// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"cinema-server/middlewares"
	"cinema-server/storage"

	"github.com/labstack/echo/v4"
)

var mediaExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ServeMediaFile serves avatars written by the local storage backend to
// holders of a URL from GetSignedURL. Other backends hand out their own URLs,
// so the route answers 404 for them.
func ServeMediaFile(c echo.Context) error {
	local, ok := middlewares.GetStorage(c).(*storage.LocalStorage)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}

	requestedPath := c.Param("*")

	cleanPath := filepath.Clean(requestedPath)
	if strings.Contains(cleanPath, "..") || strings.HasPrefix(cleanPath, "/") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file path")
	}

	if err := local.VerifyURLToken(filepath.ToSlash(cleanPath), c.QueryParam("token")); err != nil {
		c.Logger().Error("Rejected media URL: ", err)
		return echo.NewHTTPError(http.StatusForbidden, "Invalid or expired link")
	}

	absMediaDir, err := filepath.Abs(local.BasePath())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to resolve media directory")
	}

	absFullPath, err := filepath.Abs(filepath.Join(absMediaDir, cleanPath))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file path")
	}

	if !strings.HasPrefix(absFullPath, absMediaDir+string(os.PathSeparator)) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	fileInfo, err := os.Stat(absFullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to access file")
	}

	if fileInfo.IsDir() {
		return echo.NewHTTPError(http.StatusForbidden, "Directory listing not allowed")
	}

	if !mediaExtensions[strings.ToLower(filepath.Ext(absFullPath))] {
		return echo.NewHTTPError(http.StatusForbidden, "File type not allowed")
	}

	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")

	return c.File(absFullPath)
}
