package models

import "time"

// PersonalInfo holds the site owner's biography and contacts.
// Only one record is expected; the admin surface enforces it.
type PersonalInfo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Title     string    `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	About     string    `gorm:"type:text;not null" json:"about" binding:"required"`
	Email     string    `gorm:"size:254;not null" json:"email" binding:"required,email"`
	Phone     string    `gorm:"size:20" json:"phone" binding:"max=20"`
	Location  string    `gorm:"size:100" json:"location" binding:"max=100"`
	LinkedIn  string    `gorm:"column:linkedin;size:200" json:"linkedin" binding:"omitempty,url"`
	GitHub    string    `gorm:"column:github;size:200" json:"github" binding:"omitempty,url"`
	Telegram  string    `gorm:"size:100" json:"telegram" binding:"max=100"`
}

// TableName keeps the singular table name used by the seed data.
func (PersonalInfo) TableName() string {
	return "personal_info"
}
