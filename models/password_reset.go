// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

type PasswordReset struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"size:255;not null;uniqueIndex"`
	IsUsed    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;index"`
	User      User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Expired reports whether the token is older than ttl at now.
func (p *PasswordReset) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(p.CreatedAt) > ttl
}

func init() {
	AllModels = append(AllModels, &PasswordReset{})
}
