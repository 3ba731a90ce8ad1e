package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Education is one entry of the education history.
type Education struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Institution string    `gorm:"size:200;not null" json:"institution" binding:"required,max=200"`
	Faculty     string    `gorm:"size:200;not null" json:"faculty" binding:"required,max=200"`
	StartYear   int       `gorm:"not null" json:"start_year" binding:"required"`
	EndYear     int       `gorm:"not null;index" json:"end_year" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
}

// TableName keeps the singular table name used by the seed data.
func (Education) TableName() string {
	return "education"
}

func (e Education) Years() string {
	return fmt.Sprintf("%d - %d", e.StartYear, e.EndYear)
}

// ShortDescription cuts the description at 100 characters.
func (e Education) ShortDescription() string {
	if utf8.RuneCountInString(e.Description) <= 100 {
		return e.Description
	}
	r := []rune(e.Description)
	return string(r[:100]) + "..."
}

func (e Education) String() string {
	return fmt.Sprintf("%s (%d-%d)", e.Institution, e.StartYear, e.EndYear)
}
