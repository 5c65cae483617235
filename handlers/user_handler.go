// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"cinema-server/db"
	"cinema-server/middlewares"
	"cinema-server/models"
	"cinema-server/storage"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var avatarContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// GetMeHandler godoc
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse       "Authenticated user"
// @Failure      401 {object} DetailResponse     "Invalid token"
// @Failure      403 {object} DetailResponse     "Account is not activated"
// @Failure      404 {object} DetailResponse     "User not found"
// @Router       /me [get]
func GetMeHandler(c echo.Context) error {
	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		c.Logger().Error("Failed to get authenticated user:", err)
		return echo.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ListUsersHandler godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  UserResponse       "All users"
// @Failure      401 {object} DetailResponse     "Invalid token"
// @Failure      403 {object} DetailResponse     "Admins only"
// @Router       /users/ [get]
func ListUsersHandler(c echo.Context) error {
	logger := c.Logger()

	var users []models.User
	if err := db.Conn.WithContext(c.Request().Context()).Order("id").Find(&users).Error; err != nil {
		logger.Errorf("Failed to list users: %v", err)
		return echo.ErrInternalServerError
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// PromoteUserHandler godoc
// @Summary      Promote a user to admin
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path  int  true  "User ID"
// @Success      200 {object} UserResponse       "Promoted user"
// @Failure      400 {object} DetailResponse     "Invalid user id"
// @Failure      401 {object} DetailResponse     "Invalid token"
// @Failure      403 {object} DetailResponse     "Admins only"
// @Failure      404 {object} DetailResponse     "User not found"
// @Router       /users/{user_id}/promote [post]
func PromoteUserHandler(c echo.Context) error {
	logger := c.Logger()
	ctx := c.Request().Context()

	userID, err := parseID(c, "user_id", "user")
	if err != nil {
		return err
	}

	user := models.User{}
	if err := db.Conn.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "User not found",
			}
		}
		logger.Errorf("Failed to find user: %v", err)
		return echo.ErrInternalServerError
	}

	if !user.IsAdmin() {
		if err := db.Conn.WithContext(ctx).Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
			logger.Errorf("Failed to promote user: %v", err)
			return echo.ErrInternalServerError
		}
		user.Role = models.RoleAdmin
		logger.Infof("User promoted to admin: id=%d", user.ID)
	}

	return c.JSON(http.StatusOK, toUserResponse(&user))
}

// UploadFileHandler godoc
// @Summary      Upload a file
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      200 {object} UploadResponse     "Stored file"
// @Failure      400 {object} DetailResponse     "Missing file"
// @Failure      413 {object} DetailResponse     "File too large"
// @Failure      500 {object} DetailResponse     "Internal server error"
// @Router       /upload [post]
func UploadFileHandler(c echo.Context) error {
	logger := c.Logger()

	fileHeader, err := formFile(c)
	if err != nil {
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Errorf("Failed to open uploaded file: %v", err)
		return echo.ErrInternalServerError
	}
	defer src.Close()

	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	key := "uploads/" + uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	if err := middlewares.GetStorage(c).Save(c.Request().Context(), key, src, contentType); err != nil {
		logger.Errorf("Failed to store upload: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("File uploaded: %s", key)
	return c.JSON(http.StatusOK, UploadResponse{Filename: filepath.Base(fileHeader.Filename), Key: key})
}

// UploadAvatarHandler godoc
// @Summary      Set the current user's avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Image (jpeg, png, gif or webp)"
// @Success      200 {object} AvatarResponse     "Avatar stored"
// @Failure      400 {object} DetailResponse     "Missing file or unsupported image type"
// @Failure      401 {object} DetailResponse     "Invalid token"
// @Failure      413 {object} DetailResponse     "File too large"
// @Failure      500 {object} DetailResponse     "Internal server error"
// @Router       /users/me/avatar [post]
func UploadAvatarHandler(c echo.Context) error {
	logger := c.Logger()
	settings := middlewares.GetSettings(c)
	store := middlewares.GetStorage(c)
	ctx := c.Request().Context()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return echo.ErrUnauthorized
	}

	fileHeader, err := formFile(c)
	if err != nil {
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Errorf("Failed to open uploaded avatar: %v", err)
		return echo.ErrInternalServerError
	}
	defer src.Close()

	contentType, body, err := sniffContentType(src)
	if err != nil {
		logger.Errorf("Failed to read uploaded avatar: %v", err)
		return echo.ErrInternalServerError
	}
	ext, ok := avatarContentTypes[contentType]
	if !ok {
		logger.Errorf("Unsupported avatar content type: %s", contentType)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Avatar must be a JPEG, PNG, GIF or WebP image",
		}
	}

	key := fmt.Sprintf("avatars/%d/%s%s", user.ID, uuid.NewString(), ext)
	if err := store.Save(ctx, key, body, contentType); err != nil {
		logger.Errorf("Failed to store avatar: %v", err)
		return echo.ErrInternalServerError
	}

	previous := ""
	if user.AvatarKey != nil {
		previous = *user.AvatarKey
	}
	if err := db.Conn.WithContext(ctx).Model(user).Update("avatar_key", key).Error; err != nil {
		logger.Errorf("Failed to save avatar key: %v", err)
		if err := store.Delete(ctx, key); err != nil {
			logger.Warnf("Failed to clean up avatar %s: %v", key, err)
		}
		return echo.ErrInternalServerError
	}

	if previous != "" && previous != key {
		if err := store.Delete(ctx, previous); err != nil {
			logger.Warnf("Failed to delete previous avatar %s: %v", previous, err)
		}
	}

	url, err := store.GetSignedURL(ctx, key, settings.AvatarURLTTL)
	if err != nil {
		logger.Errorf("Failed to sign avatar URL: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Avatar updated for user ID: %d", user.ID)
	return c.JSON(http.StatusOK, AvatarResponse{AvatarURL: url})
}

// GetAvatarHandler godoc
// @Summary      Current user's avatar URL
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} AvatarResponse     "Presigned avatar URL"
// @Failure      401 {object} DetailResponse     "Invalid token"
// @Failure      404 {object} DetailResponse     "Avatar not found"
// @Failure      500 {object} DetailResponse     "Internal server error"
// @Router       /users/me/avatar [get]
func GetAvatarHandler(c echo.Context) error {
	logger := c.Logger()
	settings := middlewares.GetSettings(c)

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return echo.ErrUnauthorized
	}

	avatarNotFound := &echo.HTTPError{
		Code:    http.StatusNotFound,
		Message: "Avatar not found",
	}

	if user.AvatarKey == nil || *user.AvatarKey == "" {
		return avatarNotFound
	}

	url, err := middlewares.GetStorage(c).GetSignedURL(c.Request().Context(), *user.AvatarKey, settings.AvatarURLTTL)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Warnf("Avatar object missing: %s", *user.AvatarKey)
			return avatarNotFound
		}
		logger.Errorf("Failed to sign avatar URL: %v", err)
		return echo.ErrInternalServerError
	}

	return c.JSON(http.StatusOK, AvatarResponse{AvatarURL: url})
}

func formFile(c echo.Context) (*multipart.FileHeader, error) {
	settings := middlewares.GetSettings(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Logger().Error("Missing upload file: ", err)
		return nil, &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "file field is required",
		}
	}

	if settings.MaxUploadSize > 0 && fileHeader.Size > settings.MaxUploadSize {
		c.Logger().Errorf("Upload too large: %d bytes", fileHeader.Size)
		return nil, &echo.HTTPError{
			Code:    http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("File exceeds the %d MB limit", settings.MaxUploadSize>>20),
		}
	}
	return fileHeader, nil
}

// sniffContentType detects the type from the first 512 bytes and returns a
// reader that still yields the whole content.
func sniffContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}
