package portfolio

import (
	"sort"

	"portfolio/models"
)

// Group is one category bucket, in display order.
type Group[T any] struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Items    []T    `json:"items"`
}

// GroupSkills partitions skills by category, keeping their input order.
func GroupSkills(skills []models.Skill) map[string][]models.Skill {
	out := make(map[string][]models.Skill)
	for _, s := range skills {
		out[s.Category] = append(out[s.Category], s)
	}
	return out
}

// GroupTechnologies partitions active technologies by category, keeping their input order.
func GroupTechnologies(techs []models.Technology) map[string][]models.Technology {
	out := make(map[string][]models.Technology)
	for _, t := range techs {
		if !t.IsActive {
			continue
		}
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}

// Ordered flattens a grouping into buckets following choices. Categories
// missing from choices come last, sorted by name.
func Ordered[T any](groups map[string][]T, choices []models.Choice) []Group[T] {
	out := make([]Group[T], 0, len(groups))
	seen := make(map[string]bool, len(groups))
	for _, c := range choices {
		items, ok := groups[c.Value]
		if !ok {
			continue
		}
		seen[c.Value] = true
		out = append(out, Group[T]{Category: c.Value, Label: c.Label, Items: items})
	}
	for _, k := range sortedKeys(groups) {
		if seen[k] {
			continue
		}
		out = append(out, Group[T]{Category: k, Label: k, Items: groups[k]})
	}
	return out
}

func sortedKeys[T any](m map[string][]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
