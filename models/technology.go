package models

import (
	"strings"
	"time"
)

// Technology is an item of the tech stack shown on home and about pages.
type Technology struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Name            string    `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Slug            string    `gorm:"size:100;not null;uniqueIndex" json:"slug" binding:"max=100"`
	Category        string    `gorm:"size:20;not null;index" json:"category" binding:"required"`
	Level           int       `gorm:"not null;default:3" json:"level" binding:"min=1,max=5"`
	Description     string    `gorm:"type:text" json:"description"`
	IconClass       string    `gorm:"size:100" json:"icon_class" binding:"max=100"`
	IconColor       string    `gorm:"size:20" json:"icon_color" binding:"omitempty,max=20"`
	BgColor         string    `gorm:"size:20" json:"bg_color" binding:"omitempty,max=20"`
	ExperienceYears float64   `gorm:"default:0" json:"experience_years" binding:"min=0"`
	LastUsed        *Date     `gorm:"type:date" json:"last_used"`
	Order           int       `gorm:"column:order;default:0" json:"order"`
	IsActive        bool      `gorm:"not null;index" json:"is_active"`
}

const (
	DefaultIconColor = "#3a6656"
	DefaultBgColor   = "#e9f0e8"
)

// CategoryDisplay returns the category label.
func (t Technology) CategoryDisplay() string {
	return Label(TechnologyCategories, t.Category)
}

// LevelDisplay returns the level label, e.g. "Advanced".
func (t Technology) LevelDisplay() string {
	l := clampLevel(t.Level)
	return TechnologyLevels[l-1].Label
}

// Stars renders the level as five glyphs: filled for the level, hollow for the rest.
func (t Technology) Stars() string {
	return Stars(t.Level)
}

// Stars renders level (clamped to 1..5) as a five glyph rating.
func Stars(level int) string {
	l := clampLevel(level)
	return strings.Repeat("★", l) + strings.Repeat("☆", 5-l)
}

func clampLevel(l int) int {
	if l < 1 {
		return 1
	}
	if l > 5 {
		return 5
	}
	return l
}
