package models

import (
	"time"
)

// AdminUser is an account allowed into the admin surface.
type AdminUser struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string `gorm:"size:150;not null;uniqueIndex"`
	HashedPassword []byte `gorm:"not null" json:"-"`
	IsActive       bool   `gorm:"default:true;not null"`
}
