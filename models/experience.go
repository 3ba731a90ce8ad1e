package models

import (
	"fmt"
	"time"
)

// Experience is one position in the work history.
type Experience struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Title        string    `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Company      string    `gorm:"size:200;not null" json:"company" binding:"required,max=200"`
	StartDate    Date      `gorm:"type:date;not null;index" json:"start_date"`
	EndDate      *Date     `gorm:"type:date" json:"end_date"`
	Current      bool      `gorm:"default:false;not null" json:"current"`
	Description  string    `gorm:"type:text;not null" json:"description" binding:"required"`
	Technologies string    `gorm:"size:300" json:"technologies" binding:"max=300"`
}

// DurationDisplay renders the period of employment by years.
func (e Experience) DurationDisplay() string {
	switch {
	case e.Current:
		return fmt.Sprintf("%d – present", e.StartDate.Year())
	case e.EndDate != nil && !e.EndDate.IsZero():
		return fmt.Sprintf("%d – %d", e.StartDate.Year(), e.EndDate.Year())
	default:
		return fmt.Sprintf("%d", e.StartDate.Year())
	}
}

func (e Experience) String() string {
	return e.Title + " at " + e.Company
}
