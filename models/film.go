// SPDX-License-Identifier: GPL-3.0-only

package models

type Film struct {
	ID    uint    `gorm:"primaryKey"`
	Title string  `gorm:"not null;index"`
	Genre string  `gorm:"not null;index"`
	Price float64 `gorm:"not null"`
}

func init() {
	AllModels = append(AllModels, &Film{})
}
