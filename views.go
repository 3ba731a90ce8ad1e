package main

import (
	"fmt"
	"time"

	"portfolio/models"
	"portfolio/pkg/portfolio"

	"gorm.io/gorm"
)

const (
	homeSkillLimit      = 8
	homeExperienceLimit = 2
	homeFeaturedLimit   = 3
	projectsPerPage     = 6
)

type homeContext struct {
	PersonalInfo           *models.PersonalInfo                 `json:"personal_info"`
	Skills                 []models.Skill                       `json:"skills"`
	Experiences            []models.Experience                  `json:"experiences"`
	FeaturedProjects       []models.Project                     `json:"featured_projects"`
	TechnologiesByCategory map[string][]models.Technology       `json:"technologies_by_category"`
	TechnologyGroups       []portfolio.Group[models.Technology] `json:"technology_groups"`
	YearsOfExperience      float64                              `json:"years_of_experience"`
}

type aboutContext struct {
	PersonalInfo           *models.PersonalInfo                 `json:"personal_info"`
	SkillsByCategory       map[string][]models.Skill            `json:"skills_by_category"`
	SkillGroups            []portfolio.Group[models.Skill]      `json:"skill_groups"`
	Experiences            []models.Experience                  `json:"experiences"`
	Educations             []models.Education                   `json:"educations"`
	TechnologiesByCategory map[string][]models.Technology       `json:"technologies_by_category"`
	TechnologyGroups       []portfolio.Group[models.Technology] `json:"technology_groups"`
	YearsOfExperience      float64                              `json:"years_of_experience"`
}

type projectPage struct {
	Projects []models.Project `json:"projects"`
	Page     int              `json:"page"`
	NumPages int              `json:"num_pages"`
	Total    int64            `json:"count"`
	HasPrev  bool             `json:"has_previous"`
	HasNext  bool             `json:"has_next"`
}

func (p projectPage) PrevPage() int { return p.Page - 1 }
func (p projectPage) NextPage() int { return p.Page + 1 }

// firstPersonalInfo returns the singleton record, or nil when none exists.
func firstPersonalInfo(gdb *gorm.DB) (*models.PersonalInfo, error) {
	var rows []models.PersonalInfo
	if err := gdb.Order("id").Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load personal info: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func skillsQuery(gdb *gorm.DB) *gorm.DB {
	return gdb.Model(&models.Skill{}).Order("category").Order(orderCol("order", false)).Order("id")
}

func experiencesQuery(gdb *gorm.DB) *gorm.DB {
	return gdb.Model(&models.Experience{}).Order(orderCol("start_date", true)).Order("id")
}

func projectsQuery(gdb *gorm.DB) *gorm.DB {
	return gdb.Model(&models.Project{}).Order(orderCol("order", false)).Order(orderCol("created_at", true)).Order(orderCol("id", true))
}

// technologyGroups loads active technologies ordered by (order, name) and groups them.
func technologyGroups(gdb *gorm.DB) (map[string][]models.Technology, []portfolio.Group[models.Technology], error) {
	var techs []models.Technology
	err := gdb.Where("is_active = ?", true).Order(orderCol("order", false)).Order("name").Find(&techs).Error
	if err != nil {
		return nil, nil, fmt.Errorf("load technologies: %w", err)
	}
	byCat := portfolio.GroupTechnologies(techs)
	return byCat, portfolio.Ordered(byCat, models.TechnologyCategories), nil
}

// yearsOfExperience is computed from every experience record on each call.
func yearsOfExperience(gdb *gorm.DB, today time.Time) (float64, error) {
	var all []models.Experience
	if err := gdb.Find(&all).Error; err != nil {
		return 0, fmt.Errorf("load experiences: %w", err)
	}
	return portfolio.YearsOfExperience(all, today), nil
}

func loadHome(gdb *gorm.DB, today time.Time) (homeContext, error) {
	var ctx homeContext
	var err error
	if ctx.PersonalInfo, err = firstPersonalInfo(gdb); err != nil {
		return ctx, err
	}
	if err = skillsQuery(gdb).Limit(homeSkillLimit).Find(&ctx.Skills).Error; err != nil {
		return ctx, fmt.Errorf("load skills: %w", err)
	}
	if err = experiencesQuery(gdb).Limit(homeExperienceLimit).Find(&ctx.Experiences).Error; err != nil {
		return ctx, fmt.Errorf("load experiences: %w", err)
	}
	if err = projectsQuery(gdb).Where("is_featured = ?", true).Limit(homeFeaturedLimit).Find(&ctx.FeaturedProjects).Error; err != nil {
		return ctx, fmt.Errorf("load featured projects: %w", err)
	}
	if ctx.TechnologiesByCategory, ctx.TechnologyGroups, err = technologyGroups(gdb); err != nil {
		return ctx, err
	}
	ctx.YearsOfExperience, err = yearsOfExperience(gdb, today)
	return ctx, err
}

func loadAbout(gdb *gorm.DB, today time.Time) (aboutContext, error) {
	var ctx aboutContext
	var err error
	if ctx.PersonalInfo, err = firstPersonalInfo(gdb); err != nil {
		return ctx, err
	}
	var skills []models.Skill
	if err = skillsQuery(gdb).Find(&skills).Error; err != nil {
		return ctx, fmt.Errorf("load skills: %w", err)
	}
	ctx.SkillsByCategory = portfolio.GroupSkills(skills)
	ctx.SkillGroups = portfolio.Ordered(ctx.SkillsByCategory, models.SkillCategories)
	if err = experiencesQuery(gdb).Find(&ctx.Experiences).Error; err != nil {
		return ctx, fmt.Errorf("load experiences: %w", err)
	}
	if err = gdb.Order(orderCol("end_year", true)).Order("id").Find(&ctx.Educations).Error; err != nil {
		return ctx, fmt.Errorf("load education: %w", err)
	}
	if ctx.TechnologiesByCategory, ctx.TechnologyGroups, err = technologyGroups(gdb); err != nil {
		return ctx, err
	}
	ctx.YearsOfExperience = portfolio.YearsOfExperience(ctx.Experiences, today)
	return ctx, nil
}

// loadProjectPage returns one page of projects. Pages past the end are empty.
func loadProjectPage(gdb *gorm.DB, page int) (projectPage, error) {
	if page < 1 {
		page = 1
	}
	out := projectPage{Page: page, Projects: []models.Project{}}
	if err := gdb.Model(&models.Project{}).Count(&out.Total).Error; err != nil {
		return out, fmt.Errorf("count projects: %w", err)
	}
	out.NumPages = numPages(out.Total, projectsPerPage)
	err := projectsQuery(gdb).Offset((page - 1) * projectsPerPage).Limit(projectsPerPage).Find(&out.Projects).Error
	if err != nil {
		return out, fmt.Errorf("load projects: %w", err)
	}
	out.HasPrev = page > 1
	out.HasNext = page < out.NumPages
	return out, nil
}

func loadProject(gdb *gorm.DB, id uint) (models.Project, error) {
	var p models.Project
	err := gdb.Preload("Stack", func(tx *gorm.DB) *gorm.DB {
		return tx.Order(orderCol("order", false)).Order("name")
	}).First(&p, id).Error
	return p, err
}

func numPages(total int64, perPage int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
