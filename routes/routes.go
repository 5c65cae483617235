// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"cinema-server/commons"
	"cinema-server/handlers"
	"cinema-server/middlewares"
	"cinema-server/storage"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, settings *commons.Settings, store storage.Storage) {
	commons.Logger.Debug("Registering routes")

	e.Validator = commons.NewRequestValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Use(middlewares.Inject(settings, store))

	e.POST("/register", handlers.RegisterHandler)
	e.POST("/login", handlers.LoginHandler)
	e.GET("/activate", handlers.ActivateHandler)
	e.POST("/forgot_password", handlers.ForgotPasswordHandler)
	e.POST("/reset_password", handlers.ResetPasswordHandler)

	e.GET("/me", handlers.GetMeHandler, middlewares.VerifyAuthMiddleware)

	movies := e.Group("/movies")
	movies.GET("/", handlers.ListFilmsHandler)
	movies.GET("/:film_id", handlers.GetFilmHandler)
	movies.POST("/", handlers.CreateFilmHandler, middlewares.RequireAdmin)
	movies.PUT("/:film_id", handlers.UpdateFilmHandler, middlewares.RequireAdmin)
	movies.DELETE("/:film_id", handlers.DeleteFilmHandler, middlewares.RequireAdmin)

	users := e.Group("/users")
	users.GET("/", handlers.ListUsersHandler, middlewares.RequireAdmin)
	users.POST("/:user_id/promote", handlers.PromoteUserHandler, middlewares.RequireAdmin)
	users.GET("/me/avatar", handlers.GetAvatarHandler, middlewares.VerifyAuthMiddleware)
	users.POST("/me/avatar", handlers.UploadAvatarHandler, middlewares.VerifyAuthMiddleware)

	e.POST("/upload", handlers.UploadFileHandler)
	e.GET("/media/*", handlers.ServeMediaFile)

	commons.Logger.Info("Routes registered successfully")
}
