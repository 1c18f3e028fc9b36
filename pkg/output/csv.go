package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/revenue-forecast/internal/forecast"
	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/format"
)

var projectsHeader = []string{
	"Client", "Project", "Type", "Segment", "Country", "Probability (%)", "Monthly amount",
	"Start year", "Start month", "Duration (months)", "TCV", "Product",
}

// WriteProjectsCSV writes one line per project in input order.
func WriteProjectsCSV(w io.Writer, projects []project.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(projectsHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range projects {
		record := []string{
			p.ClientKey(),
			p.Name,
			p.Type.Label(),
			p.Segment.Label(),
			p.Country.Label(),
			strconv.FormatFloat(format.RoundWhole(p.Probability*100), 'f', 0, 64),
			money(p.MonthlyAmount),
			strconv.Itoa(p.EffectiveStartYear()),
			p.StartMonth.Label(),
			strconv.Itoa(p.DurationMonths),
			money(forecast.TCV(p)),
			p.Product,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write project %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYearCSV writes the weighted monthly breakdown of year. Only projects
// with revenue in the year are listed; months are rounded to whole amounts.
func WriteYearCSV(w io.Writer, projects []project.Project, year int) error {
	cw := csv.NewWriter(w)

	header := []string{"Client", "Project", "Type", "Probability (%)"}
	for _, m := range project.Months {
		header = append(header, m.Label())
	}
	header = append(header, fmt.Sprintf("Total %d", year))
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range projects {
		monthly := forecast.Allocate(p, year)
		if !monthly.HasValue() {
			continue
		}
		record := []string{
			p.ClientKey(),
			p.Name,
			p.Type.Label(),
			strconv.FormatFloat(format.RoundWhole(p.Probability*100), 'f', 0, 64),
		}
		for _, m := range project.Months {
			record = append(record, strconv.FormatFloat(format.RoundWhole(monthly.Get(m)), 'f', 0, 64))
		}
		record = append(record, strconv.FormatFloat(format.RoundWhole(monthly.Sum()), 'f', 0, 64))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write project %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// money renders an amount with thousands separators and no symbol, so
// spreadsheets still parse it as a number.
func money(v float64) string {
	return format.NumericCurrency(v)
}
