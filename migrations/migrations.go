// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"fmt"

	"cinema-server/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "001_create_users_films_password_resets",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.User{}, &models.Film{}, &models.PasswordReset{}); err != nil {
					return fmt.Errorf("failed to create tables: %w", err)
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.PasswordReset{}, &models.Film{}, &models.User{})
			},
		},
		{
			// Earlier deployments accepted any role string at registration.
			ID: "002_normalize_user_roles",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Model(&models.User{}).
					Where("role NOT IN ?", []models.Role{models.RoleUser, models.RoleAdmin}).
					Update("role", models.RoleUser).Error; err != nil {
					return fmt.Errorf("failed to normalize user roles: %w", err)
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
	}
}
