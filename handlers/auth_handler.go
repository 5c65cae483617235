// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cinema-server/crypto"
	"cinema-server/db"
	"cinema-server/middlewares"
	"cinema-server/models"
	"cinema-server/notifications"
	"cinema-server/passwordcheck"
	"cinema-server/tokens"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var errResetTokenUsed = errors.New("password reset token already used")

var errEmailRegistered = &echo.HTTPError{
	Code:    http.StatusBadRequest,
	Message: "Email already registered",
}

// RegisterHandler godoc
// @Summary      Register a new user
// @Description  Creates an inactive account and emails an activation link.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body  RegisterRequest  true  "Registration payload"
// @Success      200 {object} UserResponse       "Created user"
// @Failure      400 {object} DetailResponse     "Invalid payload or email already registered"
// @Failure      403 {object} DetailResponse     "Only admins can create admin accounts"
// @Failure      500 {object} DetailResponse     "Internal server error"
// @Router       /register [post]
func RegisterHandler(c echo.Context) error {
	logger := c.Logger()
	settings := middlewares.GetSettings(c)
	ctx := c.Request().Context()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid register request payload:", err)
		return echo.ErrBadRequest
	}
	if req.Role == "" {
		req.Role = string(models.RoleUser)
	}
	if err := c.Validate(&req); err != nil {
		logger.Error("Register request validation failed: ", err)
		return validationError(err)
	}

	if err := passwordcheck.ValidatePassword(ctx, req.Password, passwordcheck.ParsePolicy(settings.PasswordPolicy)); err != nil {
		logger.Error("Password policy check failed: ", err)
		return validationError(err)
	}

	if models.Role(req.Role) == models.RoleAdmin {
		if !middlewares.HasBearerToken(c) {
			logger.Error("Anonymous attempt to register an admin.")
			return &echo.HTTPError{
				Code:    http.StatusForbidden,
				Message: "Only admins can register admin accounts",
			}
		}
		caller, err := middlewares.CurrentUser(c)
		if err != nil {
			return err
		}
		if err := middlewares.CheckAdmin(caller); err != nil {
			logger.Error("Non-admin attempt to register an admin.")
			return err
		}
	}

	err := db.Conn.WithContext(ctx).Where("email = ?", req.Email).First(&models.User{}).Error
	if err == nil {
		logger.Error("This email is already registered.")
		return errEmailRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Errorf("Failed to look up user: %v", err)
		return echo.ErrInternalServerError
	}

	hash, err := crypto.NewCrypto().HashPassword(req.Password)
	if err != nil {
		logger.Errorf("Failed to hash password: %v", err)
		return echo.ErrInternalServerError
	}

	user := models.User{
		Email:    req.Email,
		Password: hash,
		Role:     models.Role(req.Role),
		IsActive: false,
	}
	if err := db.Conn.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("Concurrent registration for the same email.")
			return errEmailRegistered
		}
		logger.Errorf("Failed to create user: %v", err)
		return echo.ErrInternalServerError
	}

	activationToken, err := middlewares.TokenService(c).IssueActivationToken(user.Email, settings.ActivationTokenTTL)
	if err != nil {
		logger.Errorf("Failed to issue activation token: %v", err)
		return echo.ErrInternalServerError
	}

	go notifications.DispatchNotification(context.Background(), settings.Mail, notifications.Email,
		notifications.NewActivationEmail(settings.AppBaseURL, user.Email, activationToken, settings.ActivationTokenTTL))

	logger.Infof("User registered successfully: id=%d", user.ID)
	return c.JSON(http.StatusOK, toUserResponse(&user))
}

// LoginHandler godoc
// @Summary      Login a user
// @Description  Exchanges email and password for a bearer access token.
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        loginRequest  body  LoginRequest  true  "Login payload"
// @Success      200 {object} TokenResponse      "Login successful"
// @Failure      401 {object} DetailResponse     "Invalid email or password"
// @Failure      403 {object} DetailResponse     "Account not activated"
// @Failure      500 {object} DetailResponse     "Internal server error"
// @Router       /login [post]
func LoginHandler(c echo.Context) error {
	logger := c.Logger()
	settings := middlewares.GetSettings(c)
	ctx := c.Request().Context()

	var req LoginRequest
	if err := bindRequest(c, &req); err != nil {
		logger.Error("Invalid login request payload:", err)
		return echo.ErrBadRequest
	}
	if req.Email == "" {
		req.Email = req.Username
	}

	invalidCredentials := &echo.HTTPError{
		Code:    http.StatusUnauthorized,
		Message: "Invalid email or password",
	}

	if req.Email == "" || req.Password == "" {
		logger.Error("Email and password are required.")
		return invalidCredentials
	}

	user := models.User{}
	if err := db.Conn.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("User not found.")
			return invalidCredentials
		}
		logger.Errorf("Failed to find user: %v", err)
		return echo.ErrInternalServerError
	}

	newCrypto := crypto.NewCrypto()
	if err := newCrypto.VerifyPassword(req.Password, user.Password); err != nil {
		logger.Error("Password verification failed.")
		return invalidCredentials
	}

	if !user.IsActive {
		logger.Error("Account not activated.")
		return &echo.HTTPError{
			Code:    http.StatusForbidden,
			Message: "Account not activated",
		}
	}

	if crypto.NeedsRehash(user.Password) {
		if hash, err := newCrypto.HashPassword(req.Password); err == nil {
			if err := db.Conn.WithContext(ctx).Model(&user).Update("hashed_password", hash).Error; err != nil {
				logger.Warnf("Failed to upgrade legacy password hash: %v", err)
			}
		}
	}

	accessToken, err := middlewares.TokenService(c).IssueAccessToken(user.Email, settings.AccessTokenTTL)
	if err != nil {
		logger.Errorf("Failed to sign token: %v", err)
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, TokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}

// ActivateHandler godoc
// @Summary      Activate an account
// @Description  Activates the account named by an activation token.
// @Tags         auth
// @Produce      json
// @Param        token  query  string  true  "Activation token"
// @Success      200 {object} DetailResponse     "Account activated successfully"
// @Failure      400 {object} DetailResponse     "Invalid or expired token"
// @Failure      404 {object} DetailResponse     "User not found"
// @Failure      500 {object} DetailResponse     "Internal server error"
// @Router       /activate [get]
func ActivateHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	claims, err := middlewares.TokenService(c).Verify(c.QueryParam("token"))
	if err != nil || claims.Type != tokens.TypeActivation || claims.Subject == "" {
		logger.Error("Invalid activation token.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid or expired token",
		}
	}

	user := models.User{}
	if err := db.Conn.WithContext(ctx).Where("email = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("User to activate not found.")
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "User not found",
			}
		}
		logger.Errorf("Failed to find user: %v", err)
		return echo.ErrInternalServerError
	}

	if err := db.Conn.WithContext(ctx).Model(&user).Update("is_active", true).Error; err != nil {
		logger.Errorf("Failed to activate user: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Account activated: id=%d", user.ID)
	return c.JSON(http.StatusOK, DetailResponse{Detail: "Account activated successfully"})
}

// ForgotPasswordHandler godoc
// @Summary      Request a password reset
// @Description  Emails a password reset token to a registered address.
// @Tags         auth
// @Produce      json
// @Param        email  query  string  true  "Account email"
// @Success      200 {object} DetailResponse     "Password reset email sent"
// @Failure      400 {object} DetailResponse     "Invalid email"
// @Failure      404 {object} DetailResponse     "User not found"
// @Failure      500 {object} DetailResponse     "Internal server error"
// @Router       /forgot_password [post]
func ForgotPasswordHandler(c echo.Context) error {
	logger := c.Logger()
	settings := middlewares.GetSettings(c)
	ctx := c.Request().Context()

	var req ForgotPasswordRequest
	if err := bindRequest(c, &req); err != nil {
		logger.Error("Invalid forgot password request payload:", err)
		return echo.ErrBadRequest
	}
	if err := c.Validate(&req); err != nil {
		logger.Error("Forgot password validation failed: ", err)
		return validationError(err)
	}

	user := models.User{}
	if err := db.Conn.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("User not found for password reset.")
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "User not found",
			}
		}
		logger.Errorf("Failed to find user: %v", err)
		return echo.ErrInternalServerError
	}

	token, err := crypto.GenerateRandomString("prt_", 32, "hex")
	if err != nil {
		logger.Errorf("Failed to generate password reset token: %v", err)
		return echo.ErrInternalServerError
	}

	passwordReset := models.PasswordReset{
		UserID: user.ID,
		Token:  token,
	}
	if err := db.Conn.WithContext(ctx).Create(&passwordReset).Error; err != nil {
		logger.Errorf("Failed to store password reset token: %v", err)
		return echo.ErrInternalServerError
	}

	go notifications.DispatchNotification(context.Background(), settings.Mail, notifications.Email,
		notifications.NewPasswordResetEmail(settings.AppBaseURL, user.Email, token, settings.ResetTokenTTL))

	logger.Infof("Password reset requested for user ID: %d", user.ID)
	return c.JSON(http.StatusOK, DetailResponse{Detail: "Password reset email sent"})
}

// ResetPasswordHandler godoc
// @Summary      Reset password
// @Description  Sets a new password using the token sent by email. Tokens are single use.
// @Tags         auth
// @Produce      json
// @Param        token         query  string  true  "Password reset token"
// @Param        new_password  query  string  true  "New password"
// @Success      200 {object} DetailResponse     "Password updated"
// @Failure      400 {object} DetailResponse     "Invalid or expired token"
// @Failure      404 {object} DetailResponse     "User not found"
// @Failure      500 {object} DetailResponse     "Internal server error"
// @Router       /reset_password [post]
func ResetPasswordHandler(c echo.Context) error {
	logger := c.Logger()
	settings := middlewares.GetSettings(c)
	ctx := c.Request().Context()

	var req ResetPasswordRequest
	if err := bindRequest(c, &req); err != nil {
		logger.Error("Invalid password reset request payload:", err)
		return echo.ErrBadRequest
	}
	if err := c.Validate(&req); err != nil {
		logger.Error("Password reset validation failed: ", err)
		return validationError(err)
	}

	if err := passwordcheck.ValidatePassword(ctx, req.NewPassword, passwordcheck.ParsePolicy(settings.PasswordPolicy)); err != nil {
		logger.Error("Password policy check failed: ", err)
		return validationError(err)
	}

	invalidToken := &echo.HTTPError{
		Code:    http.StatusBadRequest,
		Message: "Invalid or expired token",
	}

	passwordReset := models.PasswordReset{}
	if err := db.Conn.WithContext(ctx).
		Where("token = ? AND is_used = ?", req.Token, false).
		First(&passwordReset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Invalid or already used password reset token")
			return invalidToken
		}
		logger.Errorf("Failed to find password reset record: %v", err)
		return echo.ErrInternalServerError
	}

	if passwordReset.Expired(time.Now(), settings.ResetTokenTTL) {
		logger.Error("Password reset token has expired")
		return invalidToken
	}

	user := models.User{}
	if err := db.Conn.WithContext(ctx).First(&user, passwordReset.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("User for password reset not found")
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "User not found",
			}
		}
		logger.Errorf("Failed to find user: %v", err)
		return echo.ErrInternalServerError
	}

	hashedNewPassword, err := crypto.NewCrypto().HashPassword(req.NewPassword)
	if err != nil {
		logger.Errorf("Failed to hash new password: %v", err)
		return echo.ErrInternalServerError
	}

	// Claiming the token first makes a concurrent redemption update zero rows.
	err = db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.PasswordReset{}).
			Where("id = ? AND is_used = ?", passwordReset.ID, false).
			Update("is_used", true)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return errResetTokenUsed
		}
		return tx.Model(&user).Update("hashed_password", hashedNewPassword).Error
	})
	if errors.Is(err, errResetTokenUsed) {
		logger.Error("Password reset token was redeemed concurrently")
		return invalidToken
	}
	if err != nil {
		logger.Errorf("Failed to reset password: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Password reset successful for user ID: %d", user.ID)
	return c.JSON(http.StatusOK, DetailResponse{Detail: "Password updated"})
}
