// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/revenue-forecast/internal/forecast"
	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/format"
)

const labelWidth = 32

// Report bundles every derived view of one year for machine-readable output.
type Report struct {
	Year      int                        `json:"year"`
	GroupBy   forecast.GroupBy           `json:"groupBy"`
	Grid      []forecast.Row             `json:"grid"`
	Scenarios forecast.Scenarios         `json:"scenarios"`
	Summary   forecast.Summary           `json:"summary"`
	Funnel    []forecast.ProbabilityBand `json:"funnel"`
	Top       []project.Project          `json:"topOpportunities"`
	Warnings  []string                   `json:"warnings,omitempty"`
}

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

// PrettyFormat writes the human-readable report: grid, scenarios, summary
// and funnel.
func PrettyFormat(w io.Writer, report Report) {
	PrettyGrid(w, report.Year, report.Grid)
	fmt.Fprintln(w)
	PrettyScenarios(w, report.Scenarios)
	fmt.Fprintln(w)
	PrettySummary(w, report.Summary)
	fmt.Fprintln(w)
	PrettyFunnel(w, report.Funnel, report.Top)
	if len(report.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Warnings ---")
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "- %s\n", warning)
		}
	}
}

// PrettyGrid prints the grouped monthly grid, indenting rows by depth.
func PrettyGrid(w io.Writer, year int, rows []forecast.Row) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Monthly revenue %d ---\n", year)

	header := fmt.Sprintf("%-*s", labelWidth, "Project")
	for _, m := range project.Months {
		header += fmt.Sprintf(" | %10s", m.Label())
	}
	header += fmt.Sprintf(" | %12s", "Total")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("_", len(header)))

	for _, row := range rows {
		label := strings.Repeat("  ", row.Depth) + row.Label
		if row.Kind == forecast.RowProject && row.Probability != nil {
			label += fmt.Sprintf(" (%.0f%%)", *row.Probability*100)
		}
		line := fmt.Sprintf("%-*s", labelWidth, truncate(label, labelWidth))
		for _, m := range project.Months {
			line += p.Sprintf(" | %10.0f", row.Monthly.Get(m))
		}
		line += fmt.Sprintf(" | %12s", format.WholeCurrency(row.Total))
		fmt.Fprintln(w, line)
	}
}

// PrettyScenarios prints the three scenario curves and their year totals.
func PrettyScenarios(w io.Writer, s forecast.Scenarios) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Scenarios %d ---\n", s.Year)
	fmt.Fprintf(w, "Month | %14s | %14s | %14s\n", "Pessimistic", "Expected", "Optimistic")
	fmt.Fprintf(w, "_____ | %14s | %14s | %14s\n", "___________", "________", "__________")
	for _, m := range project.Months {
		_, _ = p.Fprintf(w, "%-5s | %14.2f | %14.2f | %14.2f\n",
			m.Label(), s.Pessimistic.Get(m), s.Expected.Get(m), s.Optimistic.Get(m))
	}
	_, _ = p.Fprintf(w, "%-5s | %14.2f | %14.2f | %14.2f\n",
		"Year", s.Pessimistic.Sum(), s.Expected.Sum(), s.Optimistic.Sum())
}

// PrettySummary prints the headline dashboard figures.
func PrettySummary(w io.Writer, s forecast.Summary) {
	fmt.Fprintf(w, "--- Summary %d ---\n", s.Year)
	fmt.Fprintf(w, "Backlog:             %s\n", format.Currency(s.TotalBacklog))
	fmt.Fprintf(w, "Pipeline (weighted): %s\n", format.Currency(s.TotalPipelineWeighted))
	fmt.Fprintf(w, "Pipeline (TCV):      %s\n", format.Currency(s.TotalPipelineTCV))
	fmt.Fprintf(w, "Products:            %s\n", format.Currency(s.TotalProducts))
	fmt.Fprintf(w, "Total forecast:      %s\n", format.Currency(s.TotalForecast))
	fmt.Fprintf(w, "Projects:            %d across %d clients\n", s.ProjectCount, len(s.Clients))

	concentration := fmt.Sprintf("Ignis share:         %s (%s)", format.Percent(s.IgnisPercent), format.Compact(s.IgnisRevenue))
	if s.ConcentrationRisk {
		concentration += " - concentration risk"
	}
	fmt.Fprintln(w, concentration)

	if s.Target.Target > 0 {
		fmt.Fprintf(w, "Target:              %s (%s reached, gap %s)\n",
			format.Currency(s.Target.Target), format.Percent(s.Target.FulfilmentPercent), format.Currency(s.Target.Gap))
	} else {
		fmt.Fprintln(w, "Target:              not set")
	}

	printRanked(w, "By segment", forecast.Ranked(s.BySegment))
	printRanked(w, "By country", forecast.Ranked(s.ByCountry))
	printRanked(w, "By client", forecast.Ranked(s.ByClient))
}

// PrettyFunnel prints the probability bands and the top opportunities.
func PrettyFunnel(w io.Writer, bands []forecast.ProbabilityBand, top []project.Project) {
	fmt.Fprintln(w, "--- Pipeline funnel ---")
	for _, band := range bands {
		fmt.Fprintf(w, "%-22s %3d  %s\n", band.Label, band.Count, format.Currency(band.TCV))
	}
	if len(top) == 0 {
		return
	}
	fmt.Fprintln(w, "Top opportunities:")
	for i, p := range top {
		fmt.Fprintf(w, "%2d. %s - %s (%s, %.0f%%)\n", i+1, p.Name, p.ClientKey(),
			format.Currency(forecast.TCV(p)), p.Probability*100)
	}
}

func printRanked(w io.Writer, title string, amounts []forecast.Amount) {
	if len(amounts) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, a := range amounts {
		fmt.Fprintf(w, "  %-28s %s\n", a.Key, format.Currency(a.Amount))
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
