// SPDX-License-Identifier: GPL-3.0-only

package db

import (
	"fmt"
	"testing"

	"cinema-server/crypto"
	"cinema-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("ARGON2_MEMORY", "1024")

	conn, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(conn))
	return conn
}

func TestMigrateCreatesTables(t *testing.T) {
	conn := openTestDB(t)

	for _, table := range []string{"users", "films", "password_resets"} {
		assert.True(t, conn.Migrator().HasTable(table), "table %s should exist", table)
	}
	for _, model := range models.AllModels {
		assert.True(t, conn.Migrator().HasTable(model), "table for %T should exist", model)
	}
	assert.True(t, conn.Migrator().HasColumn(&models.User{}, "hashed_password"))
	assert.True(t, conn.Migrator().HasColumn(&models.User{}, "avatar_key"))

	require.NoError(t, Migrate(conn), "migrating twice should be a no-op")
}

func TestEmailIsUnique(t *testing.T) {
	conn := openTestDB(t)

	require.NoError(t, conn.Create(&models.User{Email: "a@x.com", Password: "x"}).Error)
	err := conn.Create(&models.User{Email: "a@x.com", Password: "y"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSeedAdminCreatesActiveAdmin(t *testing.T) {
	conn := openTestDB(t)

	require.NoError(t, SeedAdmin(conn, "root@x.com", "s3cret"))

	admin := models.User{}
	require.NoError(t, conn.Where("email = ?", "root@x.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NoError(t, crypto.NewCrypto().VerifyPassword("s3cret", admin.Password))

	require.NoError(t, SeedAdmin(conn, "root@x.com", "other"))
	var count int64
	conn.Model(&models.User{}).Where("email = ?", "root@x.com").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSeedAdminPromotesExistingUser(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, conn.Create(&models.User{Email: "b@x.com", Password: "hash", Role: models.RoleUser}).Error)

	require.NoError(t, SeedAdmin(conn, "b@x.com", ""))

	user := models.User{}
	require.NoError(t, conn.Where("email = ?", "b@x.com").First(&user).Error)
	assert.True(t, user.IsAdmin())
	assert.True(t, user.IsActive)
	assert.Equal(t, "hash", user.Password)
}

func TestSeedAdminRequiresPasswordForNewAccount(t *testing.T) {
	conn := openTestDB(t)
	assert.Error(t, SeedAdmin(conn, "c@x.com", ""))
}
