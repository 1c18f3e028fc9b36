package project

import (
	"fmt"
	"strings"
)

// ValidationError reports a structurally invalid field of a project.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the structural invariants the forecast engine relies on.
// It returns the first violation found.
func Validate(p Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if !p.Type.Valid() {
		return invalid("type", "unknown type %q", p.Type)
	}
	if !p.Segment.Valid() {
		return invalid("segment", "unknown segment %q", p.Segment)
	}
	if strings.TrimSpace(p.Client) == "" {
		return invalid("client", "must not be empty")
	}
	if !p.Country.Valid() {
		return invalid("country", "unknown country %q", p.Country)
	}
	if p.Probability < 0 || p.Probability > 1 {
		return invalid("probability", "%.4f is outside [0, 1]", p.Probability)
	}
	if p.MonthlyAmount < 0 {
		return invalid("monthlyAmount", "%.2f is negative", p.MonthlyAmount)
	}
	if !p.StartMonth.Valid() {
		return invalid("startMonth", "unknown month %q", p.StartMonth)
	}
	if p.StartYear < 0 {
		return invalid("startYear", "%d is negative", p.StartYear)
	}
	if p.DurationMonths < 1 {
		return invalid("durationMonths", "%d is below 1", p.DurationMonths)
	}
	return nil
}

// Warnings returns non-fatal observations about a valid project, such as a
// backlog entry that is not at full probability.
func Warnings(p Project) []string {
	var warnings []string
	if p.Type == TypeBacklog && p.Probability < 1 {
		warnings = append(warnings, fmt.Sprintf("Backlog project '%s' has probability %.2f below 1.0", p.Name, p.Probability))
	}
	if p.Type == TypePipeline && p.Probability >= 1 {
		warnings = append(warnings, fmt.Sprintf("Pipeline project '%s' is at full probability; consider moving it to backlog", p.Name))
	}
	if p.Product != "" && p.Type != TypeProduct {
		warnings = append(warnings, fmt.Sprintf("Project '%s' sets product '%s' but is not of type product", p.Name, p.Product))
	}
	return warnings
}
