package main

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"

	"portfolio/models"
	"portfolio/pkg/media"
	"portfolio/pkg/portfolio"

	"gorm.io/gorm"
)

var (
	errSingletonExists     = errors.New("personal info already exists, edit the existing record")
	errSingletonLastRecord = errors.New("cannot delete the only personal info record")
)

var adminResources = []adminResource{
	technologyResource,
	skillResource,
	experienceResource,
	educationResource,
	personalInfoResource,
	projectResource,
}

func eqFilter(column string) filterFunc {
	return func(q *gorm.DB, v string) (*gorm.DB, error) {
		return q.Where(column+" = ?", v), nil
	}
}

func intFilter(column string) filterFunc {
	return func(q *gorm.DB, v string) (*gorm.DB, error) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, validationError{column: "must be a number"}
		}
		return q.Where(column+" = ?", n), nil
	}
}

// boolFilter accepts 1/0 as well as true/false.
func boolFilter(column string) filterFunc {
	return func(q *gorm.DB, v string) (*gorm.DB, error) {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, validationError{column: "must be 1 or 0"}
		}
		return q.Where(column+" = ?", b), nil
	}
}

func checkChoice(choices []models.Choice, field, v string) error {
	if !models.Valid(choices, v) {
		return validationError{field: fmt.Sprintf("%q is not a valid choice", v)}
	}
	return nil
}

// ---- technologies

type technologyRow struct {
	models.Technology
	CategoryDisplay string        `json:"category_display"`
	LevelDisplay    string        `json:"level_display"`
	Stars           string        `json:"stars"`
	ProjectsCount   int64         `json:"projects_count"`
	ActiveMark      template.HTML `json:"active_mark"`
	IconPreview     template.HTML `json:"icon_preview"`
}

var technologyResource = &resource[models.Technology]{
	Name:    "technologies",
	Label:   "Technology",
	PerPage: 25,
	Search: []string{
		"LOWER(name) LIKE ?",
		"LOWER(description) LIKE ?",
		"LOWER(icon_class) LIKE ?",
	},
	Filters: map[string]filterFunc{
		"category":  eqFilter("category"),
		"level":     intFilter("level"),
		"is_active": boolFilter("is_active"),
	},
	Ordering: []string{"name", "category", "level", "order", "is_active", "created_at"},
	DefaultOrder: func(q *gorm.DB) *gorm.DB {
		return q.Order("category").Order(orderCol("order", false)).Order("name")
	},
	Actions: map[string]action{
		"activate":   {Label: "Activate selected", Apply: updateField("is_active", true), Message: "%d technologies activated"},
		"deactivate": {Label: "Deactivate selected", Apply: updateField("is_active", false), Message: "%d technologies deactivated"},
	},
	New: func() models.Technology {
		return models.Technology{Level: 3, IsActive: true, Category: models.TechOther}
	},
	Prepare: func(tx *gorm.DB, t *models.Technology) error {
		if err := checkChoice(models.TechnologyCategories, "category", t.Category); err != nil {
			return err
		}
		if t.Slug == "" {
			t.Slug = portfolio.Slugify(t.Name)
		}
		if t.Slug == "" {
			return validationError{"slug": "could not be derived from the name"}
		}
		return nil
	},
	BeforeDelete: func(tx *gorm.DB, t *models.Technology) error {
		if err := tx.Model(&models.Skill{}).Where("technology_id = ?", t.ID).Update("technology_id", nil).Error; err != nil {
			return fmt.Errorf("unlink skills: %w", err)
		}
		if err := tx.Exec("DELETE FROM project_technologies WHERE technology_id = ?", t.ID).Error; err != nil {
			return fmt.Errorf("unlink projects: %w", err)
		}
		return nil
	},
	Present: presentTechnologies,
}

func presentTechnologies(tx *gorm.DB, techs []models.Technology) (any, error) {
	counts, err := projectCounts(tx, techs)
	if err != nil {
		return nil, err
	}
	rows := make([]technologyRow, len(techs))
	for i, t := range techs {
		rows[i] = technologyRow{
			Technology:      t,
			CategoryDisplay: t.CategoryDisplay(),
			LevelDisplay:    t.LevelDisplay(),
			Stars:           t.Stars(),
			ProjectsCount:   counts[t.ID],
			ActiveMark:      activeMark(t.IsActive),
			IconPreview:     iconPreview(t),
		}
	}
	return rows, nil
}

// projectCounts counts linked projects per technology in one query.
func projectCounts(tx *gorm.DB, techs []models.Technology) (map[uint]int64, error) {
	out := make(map[uint]int64, len(techs))
	if len(techs) == 0 {
		return out, nil
	}
	ids := make([]uint, len(techs))
	for i, t := range techs {
		ids[i] = t.ID
	}
	var rows []struct {
		TechnologyID uint
		N            int64
	}
	err := tx.Table("project_technologies").
		Select("technology_id, COUNT(*) AS n").
		Where("technology_id IN ?", ids).
		Group("technology_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	for _, r := range rows {
		out[r.TechnologyID] = r.N
	}
	return out, nil
}

func activeMark(active bool) template.HTML {
	if active {
		return `<span style="color: green;">✓</span> Active`
	}
	return `<span style="color: red;">✗</span> Inactive`
}

func iconPreview(t models.Technology) template.HTML {
	if t.IconClass == "" {
		return "No icon"
	}
	bg, fg := t.BgColor, t.IconColor
	if bg == "" {
		bg = models.DefaultBgColor
	}
	if fg == "" {
		fg = models.DefaultIconColor
	}
	esc := template.HTMLEscapeString
	return template.HTML(fmt.Sprintf(
		`<div style="display: inline-flex; align-items: center; gap: 10px; padding: 10px; background-color: %s; border-radius: 5px;">`+
			`<i class="bi %s" style="font-size: 24px; color: %s;"></i>`+
			`<span style="font-family: monospace;">%s</span></div>`,
		esc(bg), esc(t.IconClass), esc(fg), esc(t.IconClass)))
}

// ---- skills

var skillCategoryIcons = map[string]string{
	models.SkillBackend:  "⚙️",
	models.SkillFrontend: "🎨",
	models.SkillDevOps:   "🚀",
	models.SkillDatabase: "🗄️",
	models.SkillOther:    "📦",
}

type skillRow struct {
	models.Skill
	CategoryDisplay  string        `json:"category_display"`
	TechnologyName   string        `json:"technology_name"`
	TechnologyLink   template.HTML `json:"technology_link"`
	ProficiencyLabel string        `json:"proficiency_label"`
	ProficiencyBar   template.HTML `json:"proficiency_bar"`
}

var skillResource = &resource[models.Skill]{
	Name:    "skills",
	Label:   "Skill",
	PerPage: 30,
	Search: []string{
		"LOWER(name) LIKE ?",
		"LOWER(description) LIKE ?",
		"technology_id IN (SELECT id FROM technologies WHERE LOWER(name) LIKE ?)",
	},
	Filters: map[string]filterFunc{
		"category":   eqFilter("category"),
		"technology": intFilter("technology_id"),
	},
	Ordering: []string{"name", "category", "proficiency", "order"},
	DefaultOrder: func(q *gorm.DB) *gorm.DB {
		return q.Order("category").Order(orderCol("order", false)).Order("id")
	},
	Preload: []string{"Technology"},
	New: func() models.Skill {
		return models.Skill{Proficiency: 50, Category: models.SkillBackend}
	},
	Prepare: func(tx *gorm.DB, s *models.Skill) error {
		if err := checkChoice(models.SkillCategories, "category", s.Category); err != nil {
			return err
		}
		if s.TechnologyID != nil {
			var n int64
			if err := tx.Model(&models.Technology{}).Where("id = ?", *s.TechnologyID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return validationError{"technology_id": "unknown technology"}
			}
		}
		return nil
	},
	Present: func(tx *gorm.DB, skills []models.Skill) (any, error) {
		rows := make([]skillRow, len(skills))
		for i, s := range skills {
			rows[i] = skillRow{
				Skill:            s,
				CategoryDisplay:  skillCategoryDisplay(s),
				TechnologyLink:   "—",
				ProficiencyLabel: s.ProficiencyLabel(),
				ProficiencyBar:   proficiencyBar(s),
			}
			if s.Technology != nil {
				rows[i].TechnologyName = s.Technology.Name
				rows[i].TechnologyLink = template.HTML(fmt.Sprintf(`<a href="/admin/api/technologies/%d">%s</a>`,
					s.Technology.ID, template.HTMLEscapeString(s.Technology.Name)))
			}
		}
		return rows, nil
	},
}

func skillCategoryDisplay(s models.Skill) string {
	icon, ok := skillCategoryIcons[s.Category]
	if !ok {
		icon = skillCategoryIcons[models.SkillOther]
	}
	return icon + " " + s.CategoryDisplay()
}

func proficiencyBar(s models.Skill) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<div style="display: flex; align-items: center; gap: 10px;">`+
			`<div style="width: 100px; background: #e9ecef; border-radius: 3px; overflow: hidden;">`+
			`<div style="width: %d%%; height: 20px; background: %s;"></div></div>`+
			`<span>%d%%</span></div>`,
		s.BarWidth(), s.ProficiencyColor(), s.Proficiency))
}

// ---- experiences

type experienceRow struct {
	models.Experience
	Duration       string        `json:"duration"`
	CurrentDisplay template.HTML `json:"current_display"`
}

var experienceResource = &resource[models.Experience]{
	Name:  "experiences",
	Label: "Experience",
	Search: []string{
		"LOWER(title) LIKE ?",
		"LOWER(company) LIKE ?",
		"LOWER(description) LIKE ?",
		"LOWER(technologies) LIKE ?",
	},
	Filters: map[string]filterFunc{
		"current": boolFilter("current"),
	},
	Ordering: []string{"title", "company", "start_date", "end_date", "current"},
	DefaultOrder: func(q *gorm.DB) *gorm.DB {
		return q.Order(orderCol("start_date", true)).Order("id")
	},
	Prepare: func(tx *gorm.DB, e *models.Experience) error {
		if e.StartDate.IsZero() {
			return validationError{"start_date": "required"}
		}
		if e.EndDate != nil && e.EndDate.IsZero() {
			e.EndDate = nil
		}
		if e.EndDate != nil && e.EndDate.Before(e.StartDate.Time) {
			return validationError{"end_date": "must not be before start_date"}
		}
		return nil
	},
	Present: func(tx *gorm.DB, exps []models.Experience) (any, error) {
		rows := make([]experienceRow, len(exps))
		for i, e := range exps {
			rows[i] = experienceRow{Experience: e, Duration: e.DurationDisplay()}
			if e.Current {
				rows[i].CurrentDisplay = `<span style="color: green;">✓</span> Current`
			}
		}
		return rows, nil
	},
}

// ---- educations

type educationRow struct {
	models.Education
	YearsDisplay     string `json:"years"`
	DescriptionShort string `json:"description_short"`
}

var educationResource = &resource[models.Education]{
	Name:  "educations",
	Label: "Education",
	Search: []string{
		"LOWER(institution) LIKE ?",
		"LOWER(faculty) LIKE ?",
		"LOWER(description) LIKE ?",
	},
	Ordering: []string{"institution", "start_year", "end_year"},
	DefaultOrder: func(q *gorm.DB) *gorm.DB {
		return q.Order(orderCol("end_year", true)).Order("id")
	},
	Prepare: func(tx *gorm.DB, e *models.Education) error {
		if e.EndYear < e.StartYear {
			return validationError{"end_year": "must not be before start_year"}
		}
		return nil
	},
	Present: func(tx *gorm.DB, eds []models.Education) (any, error) {
		rows := make([]educationRow, len(eds))
		for i, e := range eds {
			rows[i] = educationRow{Education: e, YearsDisplay: e.Years(), DescriptionShort: e.ShortDescription()}
		}
		return rows, nil
	},
}

// ---- personal info

var personalInfoResource = &resource[models.PersonalInfo]{
	Name:  "personal-info",
	Label: "Personal info",
	Search: []string{
		"LOWER(name) LIKE ?",
		"LOWER(title) LIKE ?",
		"LOWER(email) LIKE ?",
		"LOWER(location) LIKE ?",
	},
	Ordering:  []string{"name", "title"},
	CanAdd:    canAddPersonalInfo,
	CanDelete: func(tx *gorm.DB, _ *models.PersonalInfo) error { return canDeletePersonalInfo(tx) },
}

// canAddPersonalInfo allows a new record only while none exists.
func canAddPersonalInfo(tx *gorm.DB) error {
	var n int64
	if err := tx.Model(&models.PersonalInfo{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ruleError{errSingletonExists}
	}
	return nil
}

// canDeletePersonalInfo refuses to remove the last remaining record.
func canDeletePersonalInfo(tx *gorm.DB) error {
	var n int64
	if err := tx.Model(&models.PersonalInfo{}).Count(&n).Error; err != nil {
		return err
	}
	if n <= 1 {
		return ruleError{errSingletonLastRecord}
	}
	return nil
}

// ---- projects

type projectRow struct {
	models.Project
	ProjectTypeDisplay string `json:"project_type_display"`
	Thumbnail          string `json:"thumbnail,omitempty"`
}

var projectResource = &resource[models.Project]{
	Name:  "projects",
	Label: "Project",
	Search: []string{
		"LOWER(title) LIKE ?",
		"LOWER(description) LIKE ?",
		"LOWER(technologies) LIKE ?",
	},
	Filters: map[string]filterFunc{
		"project_type": eqFilter("project_type"),
		"is_featured":  boolFilter("is_featured"),
	},
	Ordering: []string{"title", "project_type", "is_featured", "order", "created_at"},
	DefaultOrder: func(q *gorm.DB) *gorm.DB {
		return q.Order(orderCol("order", false)).Order(orderCol("created_at", true)).Order(orderCol("id", true))
	},
	Preload: []string{"Stack"},
	Actions: map[string]action{
		"feature":   {Label: "Mark as featured", Apply: updateField("is_featured", true), Message: "%d projects marked as featured"},
		"unfeature": {Label: "Remove from featured", Apply: updateField("is_featured", false), Message: "%d projects removed from featured"},
	},
	New: func() models.Project {
		return models.Project{ProjectType: models.ProjectWeb}
	},
	Prepare: func(tx *gorm.DB, p *models.Project) error {
		return checkChoice(models.ProjectTypes, "project_type", p.ProjectType)
	},
	AfterSave: saveProjectStack,
	BeforeDelete: func(tx *gorm.DB, p *models.Project) error {
		return tx.Model(p).Association("Stack").Clear()
	},
	Present: func(tx *gorm.DB, projects []models.Project) (any, error) {
		rows := make([]projectRow, len(projects))
		for i, p := range projects {
			rows[i] = projectRow{Project: p, ProjectTypeDisplay: p.ProjectTypeDisplay()}
			if p.Image != "" && media.Exists(cfg.MediaDir, p.Image) {
				rows[i].Thumbnail = "/media/" + media.ThumbPath(p.Image)
			}
		}
		return rows, nil
	},
}

// saveProjectStack replaces the technology links when stack_ids was sent
// and refreshes the thumbnail. A failed thumbnail is logged, not returned.
func saveProjectStack(tx *gorm.DB, p *models.Project) error {
	if p.StackIDs != nil {
		var techs []models.Technology
		if len(p.StackIDs) > 0 {
			if err := tx.Where("id IN ?", p.StackIDs).Find(&techs).Error; err != nil {
				return err
			}
			if len(techs) != len(uniqueIDs(p.StackIDs)) {
				return validationError{"stack_ids": "unknown technology"}
			}
		}
		if err := tx.Model(p).Association("Stack").Replace(techs); err != nil {
			return fmt.Errorf("link stack: %w", err)
		}
	}
	if p.Image != "" {
		if _, err := media.Thumbnail(cfg.MediaDir, p.Image, media.ThumbWidth); err != nil {
			slog.Warn("thumbnail failed", "project", p.ID, "image", p.Image, "err", err)
		}
	}
	return nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
