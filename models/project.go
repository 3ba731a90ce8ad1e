package models

import "time"

// Project is a showcase entry.
type Project struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Title        string       `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Description  string       `gorm:"type:text;not null" json:"description" binding:"required"`
	ProjectType  string       `gorm:"size:20;not null;default:web;index" json:"project_type" binding:"required"`
	Technologies string       `gorm:"size:300;not null" json:"technologies" binding:"max=300"`
	Image        string       `gorm:"size:255" json:"image" binding:"max=255"`
	GitHubURL    string       `gorm:"column:github_url;size:200" json:"github_url" binding:"omitempty,url"`
	LiveURL      string       `gorm:"size:200" json:"live_url" binding:"omitempty,url"`
	IsFeatured   bool         `gorm:"default:false;not null;index" json:"is_featured"`
	Order        int          `gorm:"column:order;default:0" json:"order"`
	Stack        []Technology `gorm:"many2many:project_technologies;constraint:OnDelete:CASCADE;" json:"stack,omitempty" binding:"-"`
	StackIDs     []uint       `gorm:"-" json:"stack_ids,omitempty" binding:"-"`
}

// ProjectTypeDisplay returns the project type label.
func (p Project) ProjectTypeDisplay() string {
	return Label(ProjectTypes, p.ProjectType)
}
