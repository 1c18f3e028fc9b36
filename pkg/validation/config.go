// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

// TargetInfo is the subset of a revenue target needed for validation.
type TargetInfo struct {
	Year   int
	Amount float64
}

// ForecastValidator checks the forecast section of a configuration.
type ForecastValidator struct {
	BaseYear       int
	SupportedYears []int
	Targets        []TargetInfo
}

// ValidateAll validates the forecast settings and returns warnings.
func (fv *ForecastValidator) ValidateAll() []string {
	var warnings []string

	if len(fv.SupportedYears) == 0 {
		warnings = append(warnings, "No supported years configured")
	}

	seenYears := make(map[int]bool, len(fv.SupportedYears))
	for _, y := range fv.SupportedYears {
		if seenYears[y] {
			warnings = append(warnings, fmt.Sprintf("Supported year %d is listed more than once", y))
		}
		seenYears[y] = true
		if y < constants.BaseYear {
			warnings = append(warnings, fmt.Sprintf("Supported year %d is before the planning base year %d",
				y, constants.BaseYear))
		}
	}

	if len(fv.SupportedYears) > 0 && !seenYears[fv.BaseYear] {
		warnings = append(warnings, fmt.Sprintf("Base year %d is not one of the supported years %v",
			fv.BaseYear, fv.SupportedYears))
	}

	seenTargets := make(map[int]bool, len(fv.Targets))
	for _, target := range fv.Targets {
		if seenTargets[target.Year] {
			warnings = append(warnings, fmt.Sprintf("Target for %d is defined more than once; the first one is used",
				target.Year))
		}
		seenTargets[target.Year] = true

		if len(fv.SupportedYears) > 0 && !seenYears[target.Year] {
			warnings = append(warnings, fmt.Sprintf("Target for %d is outside the supported years and will never be shown",
				target.Year))
		}
		if target.Amount <= 0 {
			warnings = append(warnings, fmt.Sprintf("Target for %d is not positive (%.2f); progress will show 0%%",
				target.Year, target.Amount))
		}
	}

	for _, y := range fv.SupportedYears {
		if !seenTargets[y] {
			warnings = append(warnings, fmt.Sprintf("No revenue target configured for %d", y))
		}
	}

	return warnings
}

// SortedYears returns a sorted, de-duplicated copy of years.
func SortedYears(years []int) []int {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}
