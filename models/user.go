// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

var AllModels []any

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        uint    `gorm:"primaryKey"`
	Email     string  `gorm:"not null;uniqueIndex"`
	Password  string  `gorm:"column:hashed_password;not null"`
	Role      Role    `gorm:"size:16;not null;default:user"`
	IsActive  bool    `gorm:"not null;default:false"`
	AvatarKey *string `gorm:"default:null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func init() {
	AllModels = append(AllModels, &User{})
}
