package validation

import (
	"reflect"
	"strings"
	"testing"
)

func TestForecastValidatorValidateAll(t *testing.T) {
	tests := []struct {
		name      string
		validator ForecastValidator
		expected  []string
	}{
		{
			name: "Complete configuration",
			validator: ForecastValidator{
				BaseYear:       2026,
				SupportedYears: []int{2026, 2027},
				Targets:        []TargetInfo{{Year: 2026, Amount: 1000}, {Year: 2027, Amount: 2000}},
			},
			expected: nil,
		},
		{
			name: "Base year outside range",
			validator: ForecastValidator{
				BaseYear:       2030,
				SupportedYears: []int{2026},
				Targets:        []TargetInfo{{Year: 2026, Amount: 1}},
			},
			expected: []string{"Base year 2030"},
		},
		{
			name: "Target problems",
			validator: ForecastValidator{
				BaseYear:       2026,
				SupportedYears: []int{2026, 2027},
				Targets: []TargetInfo{
					{Year: 2026, Amount: 0},
					{Year: 2026, Amount: 5},
					{Year: 2031, Amount: 5},
				},
			},
			expected: []string{
				"Target for 2026 is not positive",
				"Target for 2026 is defined more than once",
				"Target for 2031 is outside",
				"No revenue target configured for 2027",
			},
		},
		{
			name:      "No years",
			validator: ForecastValidator{BaseYear: 2026},
			expected:  []string{"No supported years configured"},
		},
		{
			name: "Duplicate and early years",
			validator: ForecastValidator{
				BaseYear:       2026,
				SupportedYears: []int{2025, 2026, 2026},
				Targets:        []TargetInfo{{Year: 2025, Amount: 1}, {Year: 2026, Amount: 1}},
			},
			expected: []string{"Supported year 2025 is before", "Supported year 2026 is listed more than once"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.validator.ValidateAll()
			if len(warnings) != len(tt.expected) {
				t.Fatalf("expected %d warnings, got %d: %v", len(tt.expected), len(warnings), warnings)
			}
			for _, want := range tt.expected {
				found := false
				for _, w := range warnings {
					if strings.Contains(w, want) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected a warning containing %q, got %v", want, warnings)
				}
			}
		})
	}
}

func TestSortedYears(t *testing.T) {
	got := SortedYears([]int{2028, 2026, 2027, 2026})
	want := []int{2026, 2027, 2028}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedYears() = %v, want %v", got, want)
	}
}
