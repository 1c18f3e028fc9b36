package forecast

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/iwvelando/revenue-forecast/internal/project"
)

// newProject builds a valid project for tests.
func newProject(id string, t project.Type, segment project.Segment, client string, amount, probability float64, year int, month project.Month, duration int) project.Project {
	return project.Project{
		ID:             id,
		Name:           "Project " + id,
		Type:           t,
		Segment:        segment,
		Client:         client,
		Country:        project.CountrySpain,
		Probability:    probability,
		MonthlyAmount:  amount,
		StartYear:      year,
		StartMonth:     month,
		DurationMonths: duration,
	}
}

func TestMonthlyOperations(t *testing.T) {
	var m Monthly
	if m.HasValue() {
		t.Fatal("zero allocation reports a value")
	}

	m.Add(Monthly{1, 2, 3})
	m.Add(Monthly{1})
	if m.Sum() != 7 {
		t.Errorf("Sum() = %.2f, expected 7", m.Sum())
	}
	if m.Get(project.Jan) != 2 || m.Get(project.Mar) != 3 {
		t.Errorf("Get() mismatch: %v", m)
	}
	if m.Get("foo") != 0 {
		t.Error("unknown month should read as zero")
	}

	cumulative := m.Cumulative()
	expected := Monthly{2, 4, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7}
	if cumulative != expected {
		t.Errorf("Cumulative() = %v, expected %v", cumulative, expected)
	}
}

func TestMonthlyJSON(t *testing.T) {
	m := Monthly{0: 1000, 11: 250}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"jan":1000`) || !strings.Contains(string(data), `"dec":250`) {
		t.Errorf("unexpected encoding %s", data)
	}

	var decoded map[string]float64
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(decoded) != 12 {
		t.Errorf("expected all 12 month keys, got %v", decoded)
	}
	for _, month := range project.Months {
		if decoded[string(month)] != m.Get(month) {
			t.Errorf("%s = %.2f, expected %.2f", month, decoded[string(month)], m.Get(month))
		}
	}
}
