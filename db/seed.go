// SPDX-License-Identifier: GPL-3.0-only

package db

import (
	"errors"
	"fmt"

	"cinema-server/commons"
	"cinema-server/crypto"
	"cinema-server/models"

	"gorm.io/gorm"
)

// SeedAdmin makes sure an active admin with the given email exists. Role
// escalation is otherwise only possible through another admin, so the first
// one has to come from the environment. An existing account is promoted and
// activated but keeps its password.
func SeedAdmin(conn *gorm.DB, email, password string) error {
	user := models.User{}
	err := conn.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.IsAdmin() && user.IsActive {
			return nil
		}
		if err := conn.Model(&user).Updates(map[string]any{
			"role":      models.RoleAdmin,
			"is_active": true,
		}).Error; err != nil {
			return fmt.Errorf("promote %s: %w", email, err)
		}
		commons.Logger.Infof("Existing user promoted to admin: %s", email)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("lookup %s: %w", email, err)
	}

	if password == "" {
		return errors.New("ADMIN_PASSWORD is required to create the admin account")
	}

	hash, err := crypto.NewCrypto().HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin %s: %w", email, err)
	}
	commons.Logger.Infof("Admin account created: %s", email)
	return nil
}
