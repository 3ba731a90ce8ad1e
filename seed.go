package main

import (
	_ "embed"
	"fmt"
	"log/slog"

	"portfolio/models"
	"portfolio/pkg/portfolio"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed_data.yaml
var seedData []byte

type seedSet struct {
	PersonalInfo *models.PersonalInfo `yaml:"personal_info"`
	Education    []seedEducation      `yaml:"education"`
	Technologies []seedTechnology     `yaml:"technologies"`
	Skills       []seedSkill          `yaml:"skills"`
	Experiences  []seedExperience     `yaml:"experiences"`
	Projects     []seedProject        `yaml:"projects"`
}

type seedEducation struct {
	Institution string `yaml:"institution"`
	Faculty     string `yaml:"faculty"`
	StartYear   int    `yaml:"start_year"`
	EndYear     int    `yaml:"end_year"`
	Description string `yaml:"description"`
}

type seedTechnology struct {
	Name            string  `yaml:"name"`
	Category        string  `yaml:"category"`
	Level           int     `yaml:"level"`
	Description     string  `yaml:"description"`
	IconClass       string  `yaml:"icon_class"`
	ExperienceYears float64 `yaml:"experience_years"`
	Order           int     `yaml:"order"`
}

type seedSkill struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Proficiency int    `yaml:"proficiency"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
	Technology  string `yaml:"technology"`
}

type seedExperience struct {
	Title        string `yaml:"title"`
	Company      string `yaml:"company"`
	StartDate    string `yaml:"start_date"`
	EndDate      string `yaml:"end_date"`
	Current      bool   `yaml:"current"`
	Description  string `yaml:"description"`
	Technologies string `yaml:"technologies"`
}

type seedProject struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	ProjectType  string   `yaml:"project_type"`
	Technologies string   `yaml:"technologies"`
	GitHubURL    string   `yaml:"github_url"`
	IsFeatured   bool     `yaml:"is_featured"`
	Order        int      `yaml:"order"`
	Stack        []string `yaml:"stack"`
}

type seedStats struct {
	Created int
	Skipped int
}

func (s *seedStats) track(created bool) {
	if created {
		s.Created++
	} else {
		s.Skipped++
	}
}

// seed loads the embedded dataset. Records are matched by their natural key
// (name, title, institution) and left untouched when they already exist.
func seed(gdb *gorm.DB) (seedStats, error) {
	var set seedSet
	if err := yaml.Unmarshal(seedData, &set); err != nil {
		return seedStats{}, fmt.Errorf("parse seed data: %w", err)
	}
	var stats seedStats
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if set.PersonalInfo != nil {
			var n int64
			if err := tx.Model(&models.PersonalInfo{}).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				if err := tx.Create(set.PersonalInfo).Error; err != nil {
					return fmt.Errorf("seed personal info: %w", err)
				}
			}
			stats.track(n == 0)
		}

		for _, e := range set.Education {
			row := models.Education{Institution: e.Institution, Faculty: e.Faculty, StartYear: e.StartYear, EndYear: e.EndYear, Description: e.Description}
			res := tx.Where(models.Education{Institution: e.Institution, Faculty: e.Faculty}).FirstOrCreate(&row)
			if res.Error != nil {
				return fmt.Errorf("seed education %s: %w", e.Institution, res.Error)
			}
			stats.track(res.RowsAffected > 0)
		}

		techs := make(map[string]models.Technology, len(set.Technologies))
		for _, t := range set.Technologies {
			row := models.Technology{
				Name: t.Name, Slug: portfolio.Slugify(t.Name), Category: t.Category, Level: t.Level,
				Description: t.Description, IconClass: t.IconClass, ExperienceYears: t.ExperienceYears,
				Order: t.Order, IsActive: true,
			}
			res := tx.Where(models.Technology{Slug: row.Slug}).FirstOrCreate(&row)
			if res.Error != nil {
				return fmt.Errorf("seed technology %s: %w", t.Name, res.Error)
			}
			stats.track(res.RowsAffected > 0)
			techs[t.Name] = row
		}

		for _, s := range set.Skills {
			row := models.Skill{Name: s.Name, Category: s.Category, Proficiency: s.Proficiency, Description: s.Description, Order: s.Order}
			if t, ok := techs[s.Technology]; ok {
				row.TechnologyID = &t.ID
			}
			res := tx.Where(models.Skill{Name: s.Name}).FirstOrCreate(&row)
			if res.Error != nil {
				return fmt.Errorf("seed skill %s: %w", s.Name, res.Error)
			}
			stats.track(res.RowsAffected > 0)
		}

		for _, e := range set.Experiences {
			start, err := models.ParseDate(e.StartDate)
			if err != nil {
				return fmt.Errorf("seed experience %s: %w", e.Title, err)
			}
			row := models.Experience{Title: e.Title, Company: e.Company, StartDate: start, Current: e.Current, Description: e.Description, Technologies: e.Technologies}
			if e.EndDate != "" {
				end, err := models.ParseDate(e.EndDate)
				if err != nil {
					return fmt.Errorf("seed experience %s: %w", e.Title, err)
				}
				row.EndDate = &end
			}
			res := tx.Where("title = ? AND company = ?", e.Title, e.Company).FirstOrCreate(&row)
			if res.Error != nil {
				return fmt.Errorf("seed experience %s: %w", e.Title, res.Error)
			}
			stats.track(res.RowsAffected > 0)
		}

		for _, p := range set.Projects {
			row := models.Project{
				Title: p.Title, Description: p.Description, ProjectType: p.ProjectType, Technologies: p.Technologies,
				GitHubURL: p.GitHubURL, IsFeatured: p.IsFeatured, Order: p.Order,
			}
			res := tx.Where(models.Project{Title: p.Title}).FirstOrCreate(&row)
			if res.Error != nil {
				return fmt.Errorf("seed project %s: %w", p.Title, res.Error)
			}
			stats.track(res.RowsAffected > 0)
			if res.RowsAffected == 0 {
				continue
			}
			stack := make([]models.Technology, 0, len(p.Stack))
			for _, name := range p.Stack {
				if t, ok := techs[name]; ok {
					stack = append(stack, t)
				}
			}
			if err := tx.Model(&row).Association("Stack").Replace(stack); err != nil {
				return fmt.Errorf("seed project %s stack: %w", p.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	slog.Info("seed complete", "created", stats.Created, "skipped", stats.Skipped)
	return stats, nil
}
