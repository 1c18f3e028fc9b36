package forecast

import (
	"github.com/iwvelando/revenue-forecast/internal/project"
)

// Filter narrows a project list. Zero-valued fields match everything.
type Filter struct {
	Type           project.Type
	Segment        project.Segment
	Country        project.Country
	Client         string
	MinProbability *float64
	MaxProbability *float64
}

// Match reports whether p passes every set criterion.
func (f Filter) Match(p project.Project) bool {
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Segment != "" && p.Segment != f.Segment {
		return false
	}
	if f.Country != "" && p.Country != f.Country {
		return false
	}
	if f.Client != "" && p.Client != f.Client {
		return false
	}
	if f.MinProbability != nil && p.Probability < *f.MinProbability {
		return false
	}
	if f.MaxProbability != nil && p.Probability > *f.MaxProbability {
		return false
	}
	return true
}

// Apply returns the matching projects in input order.
func (f Filter) Apply(projects []project.Project) []project.Project {
	matched := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if f.Match(p) {
			matched = append(matched, p)
		}
	}
	return matched
}
