// Package portfolio holds the pure computations behind the public pages:
// years of experience, category grouping and slug generation.
package portfolio

import (
	"math"
	"time"

	"portfolio/models"
)

// DaysPerYear is the average year length used to turn day spans into years.
const DaysPerYear = 365.25

// YearsOfExperience sums the day spans of exps and converts them to years,
// rounded to one decimal. A current position ends today; a finished one
// ends at its end date; a position with neither is skipped. Negative spans
// count as zero.
func YearsOfExperience(exps []models.Experience, today time.Time) float64 {
	end := models.NewDate(today)
	var days int
	for _, e := range exps {
		var until models.Date
		switch {
		case e.Current:
			until = end
		case e.EndDate != nil && !e.EndDate.IsZero():
			until = *e.EndDate
		default:
			continue
		}
		days += daysBetween(e.StartDate, until)
	}
	years := float64(days) / DaysPerYear
	return math.Round(years*10) / 10
}

func daysBetween(from, to models.Date) int {
	d := int(math.Round(to.Sub(from.Time).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}
