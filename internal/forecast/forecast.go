// Package forecast turns a flat list of projects into time-bucketed revenue
// figures: monthly allocations, project metrics, grouped roll-ups, scenario
// curves and dashboard summaries.
//
// Every function in this package is pure. Inputs are never mutated and all
// results are freshly allocated, so callers may recompute on every read.
package forecast

import (
	json "github.com/goccy/go-json"

	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

// Monthly holds one amount per calendar month, indexed jan=0 .. dec=11.
type Monthly [constants.MonthsPerYear]float64

// Get returns the amount for a month key. Unknown keys read as zero.
func (m Monthly) Get(month project.Month) float64 {
	if i := month.Index(); i >= 0 {
		return m[i]
	}
	return 0
}

// Add accumulates o into m element-wise.
func (m *Monthly) Add(o Monthly) {
	for i := range m {
		m[i] += o[i]
	}
}

// Sum returns the total of the twelve months.
func (m Monthly) Sum() float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

// HasValue reports whether any month is non-zero.
func (m Monthly) HasValue() bool {
	for _, v := range m {
		if v != 0 {
			return true
		}
	}
	return false
}

// Cumulative returns the running month-over-month prefix sum of m.
func (m Monthly) Cumulative() Monthly {
	var out Monthly
	running := 0.0
	for i, v := range m {
		running += v
		out[i] = running
	}
	return out
}

type monthlyJSON struct {
	Jan float64 `json:"jan"`
	Feb float64 `json:"feb"`
	Mar float64 `json:"mar"`
	Apr float64 `json:"apr"`
	May float64 `json:"may"`
	Jun float64 `json:"jun"`
	Jul float64 `json:"jul"`
	Aug float64 `json:"aug"`
	Sep float64 `json:"sep"`
	Oct float64 `json:"oct"`
	Nov float64 `json:"nov"`
	Dec float64 `json:"dec"`
}

// MarshalJSON encodes the allocation as an object keyed by month.
func (m Monthly) MarshalJSON() ([]byte, error) {
	return json.Marshal(monthlyJSON{
		Jan: m[0], Feb: m[1], Mar: m[2], Apr: m[3], May: m[4], Jun: m[5],
		Jul: m[6], Aug: m[7], Sep: m[8], Oct: m[9], Nov: m[10], Dec: m[11],
	})
}
