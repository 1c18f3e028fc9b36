package project

import (
	"errors"
	"testing"

	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

func validProject() Project {
	return Project{
		ID:             "p1",
		Name:           "Platform rollout",
		Type:           TypePipeline,
		Segment:        SegmentIgnis,
		Client:         "Acme",
		Country:        CountrySpain,
		Probability:    0.5,
		MonthlyAmount:  1000,
		StartYear:      2026,
		StartMonth:     Mar,
		DurationMonths: 6,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Project)
		field  string
	}{
		{name: "valid", mutate: func(p *Project) {}},
		{name: "empty name", mutate: func(p *Project) { p.Name = "  " }, field: "name"},
		{name: "unknown type", mutate: func(p *Project) { p.Type = "lead" }, field: "type"},
		{name: "unknown segment", mutate: func(p *Project) { p.Segment = "other" }, field: "segment"},
		{name: "empty client", mutate: func(p *Project) { p.Client = "" }, field: "client"},
		{name: "unknown country", mutate: func(p *Project) { p.Country = "france" }, field: "country"},
		{name: "probability above one", mutate: func(p *Project) { p.Probability = 1.01 }, field: "probability"},
		{name: "probability below zero", mutate: func(p *Project) { p.Probability = -0.1 }, field: "probability"},
		{name: "negative amount", mutate: func(p *Project) { p.MonthlyAmount = -1 }, field: "monthlyAmount"},
		{name: "unknown month", mutate: func(p *Project) { p.StartMonth = "sept" }, field: "startMonth"},
		{name: "zero duration", mutate: func(p *Project) { p.DurationMonths = 0 }, field: "durationMonths"},
		{name: "missing start year is allowed", mutate: func(p *Project) { p.StartYear = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProject()
			tt.mutate(&p)
			err := Validate(p)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v, expected ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Validate() field = %s, expected %s", vErr.Field, tt.field)
			}
		})
	}
}

func TestMonthIndex(t *testing.T) {
	for i, m := range Months {
		if m.Index() != i {
			t.Errorf("%s.Index() = %d, expected %d", m, m.Index(), i)
		}
	}
	if Month("foo").Index() != -1 {
		t.Error("expected -1 for unknown month")
	}

	m, err := ParseMonth(" NOV ")
	if err != nil || m != Nov {
		t.Errorf("ParseMonth() = %s, %v", m, err)
	}
	if _, err := ParseMonth("november"); err == nil {
		t.Error("expected error for full month name")
	}
}

func TestClientKey(t *testing.T) {
	p := validProject()
	if p.ClientKey() != "Acme" {
		t.Errorf("ClientKey() = %s, expected Acme", p.ClientKey())
	}
	p.ParentClient = "Acme Group"
	if p.ClientKey() != "Acme Group" {
		t.Errorf("ClientKey() = %s, expected Acme Group", p.ClientKey())
	}
	p.ParentClient = "   "
	if p.ClientKey() != "Acme" {
		t.Errorf("blank parent should fall back to client, got %s", p.ClientKey())
	}
}

func TestPatchApply(t *testing.T) {
	p := validProject()
	prob := 0.9
	segment := SegmentNoIgnis
	patched := Patch{Probability: &prob, Segment: &segment}.Apply(p)

	if patched.ID != p.ID {
		t.Errorf("patch changed id to %s", patched.ID)
	}
	if patched.Probability != 0.9 || patched.Segment != SegmentNoIgnis {
		t.Errorf("patch not applied: %+v", patched)
	}
	if p.Probability != 0.5 {
		t.Error("patch mutated the source record")
	}
	if patched.Name != p.Name || patched.DurationMonths != p.DurationMonths {
		t.Error("untouched fields changed")
	}
}

func TestNormalize(t *testing.T) {
	p := validProject()
	p.StartYear = 0
	p.TCV = 42
	p.Name = "  Platform rollout "

	n := Normalize(p)
	if n.StartYear != constants.BaseYear {
		t.Errorf("StartYear = %d, expected %d", n.StartYear, constants.BaseYear)
	}
	if n.TCV != 6000 {
		t.Errorf("TCV = %.2f, expected 6000", n.TCV)
	}
	if n.Name != "Platform rollout" {
		t.Errorf("Name = %q", n.Name)
	}
}

func TestWarnings(t *testing.T) {
	p := validProject()
	p.Type = TypeBacklog
	p.Probability = 0.8
	if len(Warnings(p)) != 1 {
		t.Errorf("expected one warning for under-probable backlog, got %v", Warnings(p))
	}

	p = validProject()
	if len(Warnings(p)) != 0 {
		t.Errorf("expected no warnings, got %v", Warnings(p))
	}
}
