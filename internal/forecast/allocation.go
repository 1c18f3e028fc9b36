package forecast

import (
	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

// Allocate returns the monthly revenue p contributes within year, weighted by
// the project's own probability. A year outside the active span yields an
// all-zero allocation.
func Allocate(p project.Project, year int) Monthly {
	return AllocateAt(p, year, p.Probability)
}

// AllocateAt is Allocate with probability substituted for the project's own.
// The record itself is not modified.
func AllocateAt(p project.Project, year int, probability float64) Monthly {
	var monthly Monthly
	start := p.StartMonth.Index()
	if start < 0 {
		return monthly
	}
	startYear := p.EffectiveStartYear()
	if year < startYear {
		return monthly
	}

	amount := p.MonthlyAmount * probability
	for i := 0; i < p.DurationMonths; i++ {
		absolute := start + i
		activeYear := startYear + absolute/constants.MonthsPerYear
		if activeYear > year {
			break
		}
		if activeYear == year {
			monthly[absolute%constants.MonthsPerYear] += amount
		}
	}
	return monthly
}

// AllocateStartYear allocates p into its own start year. Months that roll
// over into later years are not included, which matches single-year
// deployments where the forecast covered only one calendar year.
func AllocateStartYear(p project.Project) Monthly {
	return Allocate(p, p.EffectiveStartYear())
}

// ActiveYears returns the first and last calendar year in which p has an
// active month.
func ActiveYears(p project.Project) (first, last int) {
	first = p.EffectiveStartYear()
	start := p.StartMonth.Index()
	if start < 0 || p.DurationMonths < 1 {
		return first, first
	}
	last = first + (start+p.DurationMonths-1)/constants.MonthsPerYear
	return first, last
}
