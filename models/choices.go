package models

// Choice is a stored value with its human readable label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Skill categories.
const (
	SkillBackend  = "backend"
	SkillFrontend = "frontend"
	SkillDevOps   = "devops"
	SkillDatabase = "database"
	SkillOther    = "other"
)

var SkillCategories = []Choice{
	{SkillBackend, "Backend"},
	{SkillFrontend, "Frontend"},
	{SkillDevOps, "DevOps"},
	{SkillDatabase, "Database"},
	{SkillOther, "Other"},
}

// Technology categories.
const (
	TechLanguage  = "language"
	TechFramework = "framework"
	TechDatabase  = "database"
	TechDevOps    = "devops"
	TechTool      = "tool"
	TechOther     = "other"
)

var TechnologyCategories = []Choice{
	{TechLanguage, "Programming language"},
	{TechFramework, "Framework / library"},
	{TechDatabase, "Database"},
	{TechDevOps, "DevOps"},
	{TechTool, "Tool"},
	{TechOther, "Other"},
}

// TechnologyLevels maps levels 1..5 to labels, index 0 is level 1.
var TechnologyLevels = []Choice{
	{"1", "Beginner"},
	{"2", "Basic"},
	{"3", "Intermediate"},
	{"4", "Advanced"},
	{"5", "Expert"},
}

// Project types.
const (
	ProjectWeb     = "web"
	ProjectMobile  = "mobile"
	ProjectDesktop = "desktop"
	ProjectOther   = "other"
)

var ProjectTypes = []Choice{
	{ProjectWeb, "Web Development"},
	{ProjectMobile, "Mobile Development"},
	{ProjectDesktop, "Desktop Application"},
	{ProjectOther, "Other"},
}

// Label returns the label for value, or value itself when it is unknown.
func Label(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// Valid reports whether value is one of choices.
func Valid(choices []Choice, value string) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}
