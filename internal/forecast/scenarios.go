package forecast

import (
	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

// Scenarios holds the pessimistic, expected and optimistic revenue curves for
// one year together with their running cumulative variants.
type Scenarios struct {
	Year                  int     `json:"year"`
	Pessimistic           Monthly `json:"pessimistic"`
	Expected              Monthly `json:"expected"`
	Optimistic            Monthly `json:"optimistic"`
	CumulativePessimistic Monthly `json:"cumulativePessimistic"`
	CumulativeExpected    Monthly `json:"cumulativeExpected"`
	CumulativeOptimistic  Monthly `json:"cumulativeOptimistic"`
}

// BuildScenarios projects three revenue curves for year:
//   - pessimistic: backlog only, at stored probability
//   - expected: pessimistic plus pipeline and product at stored probability
//   - optimistic: every project at full probability
//
// Backlog is accumulated before the other types in all three curves so that
// pessimistic <= expected <= optimistic holds month by month.
func BuildScenarios(projects []project.Project, year int) Scenarios {
	s := Scenarios{Year: year}

	for _, p := range projects {
		if p.Type != project.TypeBacklog {
			continue
		}
		s.Pessimistic.Add(Allocate(p, year))
		s.Optimistic.Add(AllocateAt(p, year, constants.FullProbability))
	}

	s.Expected = s.Pessimistic
	for _, p := range projects {
		if p.Type == project.TypeBacklog {
			continue
		}
		s.Expected.Add(Allocate(p, year))
		s.Optimistic.Add(AllocateAt(p, year, constants.FullProbability))
	}

	s.CumulativePessimistic = s.Pessimistic.Cumulative()
	s.CumulativeExpected = s.Expected.Cumulative()
	s.CumulativeOptimistic = s.Optimistic.Cumulative()
	return s
}
