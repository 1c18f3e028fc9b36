package forecast

import (
	"github.com/iwvelando/revenue-forecast/internal/project"
)

// TCV is the total contract value, monthlyAmount × durationMonths. The cached
// TCV field on the record is ignored.
func TCV(p project.Project) float64 {
	return p.MonthlyAmount * float64(p.DurationMonths)
}

// WeightedTotal is the probability-weighted value of p over its whole life.
func WeightedTotal(p project.Project) float64 {
	amount := p.MonthlyAmount * p.Probability
	total := 0.0
	for i := 0; i < p.DurationMonths; i++ {
		total += amount
	}
	return total
}
