package forecast

import (
	"sort"

	"github.com/iwvelando/revenue-forecast/internal/project"
)

// ProbabilityBand is one stage of the pipeline funnel.
type ProbabilityBand struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Count int     `json:"count"`
	TCV   float64 `json:"tcv"`
}

// bandFloors are inclusive lower bounds, highest first. A project lands in
// the first band whose floor it reaches.
var bandFloors = []struct {
	label string
	min   float64
}{
	{label: "Very high (75-100%)", min: 0.75},
	{label: "High (50-74%)", min: 0.50},
	{label: "Medium (25-49%)", min: 0.25},
	{label: "Low (0-24%)", min: 0},
}

// Funnel buckets the non-backlog projects by win probability and totals their
// contract value per band.
func Funnel(projects []project.Project) []ProbabilityBand {
	bands := make([]ProbabilityBand, len(bandFloors))
	for i, b := range bandFloors {
		bands[i] = ProbabilityBand{Label: b.label, Min: b.min}
	}

	for _, p := range projects {
		if p.Type == project.TypeBacklog {
			continue
		}
		for i, b := range bandFloors {
			if p.Probability >= b.min {
				bands[i].Count++
				bands[i].TCV += TCV(p)
				break
			}
		}
	}
	return bands
}

// TopOpportunities returns up to limit non-backlog projects ordered by
// descending TCV. Ties keep input order.
func TopOpportunities(projects []project.Project, limit int) []project.Project {
	open := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if p.Type != project.TypeBacklog {
			open = append(open, p)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return TCV(open[i]) > TCV(open[j])
	})
	if limit >= 0 && len(open) > limit {
		open = open[:limit]
	}
	return open
}
