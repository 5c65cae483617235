// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"cinema-server/db"
	"cinema-server/models"
	"cinema-server/tokens"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func unauthorized(c echo.Context, message string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return &echo.HTTPError{
		Code:    http.StatusUnauthorized,
		Message: message,
	}
}

// HasBearerToken reports whether the request carries an Authorization: Bearer header.
func HasBearerToken(c echo.Context) bool {
	_, ok := bearerToken(c)
	return ok
}

func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// CurrentUser resolves the bearer access token to an active user. The
// returned error is always an *echo.HTTPError.
func CurrentUser(c echo.Context) (*models.User, error) {
	if user, ok := c.Get(userKey).(*models.User); ok {
		return user, nil
	}

	logger := c.Logger()

	tokenString, ok := bearerToken(c)
	if !ok {
		logger.Error("Authorization header missing or invalid.")
		return nil, unauthorized(c, "Not authenticated")
	}

	claims, err := TokenService(c).Verify(tokenString)
	if err != nil || claims.Type != tokens.TypeAccess {
		logger.Error("Access token rejected: ", err)
		return nil, unauthorized(c, "Invalid token")
	}

	if claims.Subject == "" {
		logger.Error("Access token has no subject.")
		return nil, unauthorized(c, "Token missing subject")
	}

	user := models.User{}
	err = db.Conn.WithContext(c.Request().Context()).Where("email = ?", claims.Subject).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("User from access token not found.")
			return nil, &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "User not found",
			}
		}
		logger.Errorf("Failed to find user: %v", err)
		return nil, echo.ErrInternalServerError
	}

	if !user.IsActive {
		logger.Error("Account is not activated.")
		return nil, &echo.HTTPError{
			Code:    http.StatusForbidden,
			Message: "Account is not activated",
		}
	}

	c.Set(userKey, &user)
	return &user, nil
}

func VerifyAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := CurrentUser(c); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireAdmin lets the request through only for an authenticated admin.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		if err := CheckAdmin(user); err != nil {
			c.Logger().Error("Admin access denied.")
			return err
		}
		return next(c)
	}
}

func CheckAdmin(user *models.User) error {
	if user == nil || !user.IsAdmin() {
		return &echo.HTTPError{
			Code:    http.StatusForbidden,
			Message: "Access forbidden: admins only",
		}
	}
	return nil
}

// GetAuthenticatedUser returns the user stored by VerifyAuthMiddleware.
func GetAuthenticatedUser(c echo.Context) (*models.User, error) {
	if user, ok := c.Get(userKey).(*models.User); ok {
		return user, nil
	}
	return nil, errors.New("no authenticated user found")
}
