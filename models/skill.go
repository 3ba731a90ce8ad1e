package models

import "time"

// Skill is a named competency with a 0-100 proficiency.
type Skill struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Name         string      `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Category     string      `gorm:"size:20;not null;default:backend;index" json:"category" binding:"required"`
	Proficiency  int         `gorm:"not null" json:"proficiency" binding:"min=0,max=100"`
	Description  string      `gorm:"type:text" json:"description"`
	Icon         string      `gorm:"size:100" json:"icon" binding:"max=100"`
	Order        int         `gorm:"column:order;default:0" json:"order"`
	TechnologyID *uint       `gorm:"index" json:"technology_id"`
	Technology   *Technology `gorm:"foreignKey:TechnologyID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"technology,omitempty" binding:"-"`
}

// CategoryDisplay returns the category label.
func (s Skill) CategoryDisplay() string {
	return Label(SkillCategories, s.Category)
}

// ProficiencyLabel buckets the proficiency percentage into a level name.
func (s Skill) ProficiencyLabel() string {
	return ProficiencyLabel(s.Proficiency)
}

func ProficiencyLabel(p int) string {
	switch {
	case p >= 80:
		return "Expert"
	case p >= 60:
		return "Advanced"
	case p >= 40:
		return "Intermediate"
	case p >= 20:
		return "Basic"
	default:
		return "Beginner"
	}
}

// ProficiencyColor is the progress bar colour for the proficiency.
func (s Skill) ProficiencyColor() string {
	switch {
	case s.Proficiency >= 70:
		return "#28a745"
	case s.Proficiency >= 50:
		return "#17a2b8"
	case s.Proficiency >= 30:
		return "#ffc107"
	default:
		return "#dc3545"
	}
}

// BarWidth is the progress bar width in percent, clamped to 0..100.
func (s Skill) BarWidth() int {
	if s.Proficiency < 0 {
		return 0
	}
	if s.Proficiency > 100 {
		return 100
	}
	return s.Proficiency
}
