// Package project defines the ForecastProject record tracked by the
// dashboard together with the closed enumerations it is built from.
package project

import (
	"strings"

	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

// Type classifies how certain the revenue of a project is.
type Type string

const (
	TypeBacklog  Type = "backlog"
	TypePipeline Type = "pipeline"
	TypeProduct  Type = "product"
)

// Types lists every project type in reporting order.
var Types = []Type{TypeBacklog, TypePipeline, TypeProduct}

// Valid reports whether t is a known project type.
func (t Type) Valid() bool {
	switch t {
	case TypeBacklog, TypePipeline, TypeProduct:
		return true
	}
	return false
}

// Label returns the display label used in reports.
func (t Type) Label() string {
	switch t {
	case TypeBacklog:
		return "Backlog"
	case TypePipeline:
		return "Pipeline"
	case TypeProduct:
		return "Product"
	}
	return string(t)
}

// Segment is the business-unit classification used for concentration reporting.
type Segment string

const (
	SegmentIgnis   Segment = "ignis"
	SegmentNoIgnis Segment = "no-ignis"
)

// Segments lists every segment in reporting order.
var Segments = []Segment{SegmentIgnis, SegmentNoIgnis}

// Valid reports whether s is a known segment.
func (s Segment) Valid() bool {
	return s == SegmentIgnis || s == SegmentNoIgnis
}

// Label returns the display label used in reports.
func (s Segment) Label() string {
	switch s {
	case SegmentIgnis:
		return "Ignis"
	case SegmentNoIgnis:
		return "No Ignis"
	}
	return string(s)
}

// Country is the closed set of countries a project can be booked in.
type Country string

const (
	CountrySpain       Country = "spain"
	CountryNetherlands Country = "netherlands"
	CountryUSA         Country = "usa"
	CountryColombia    Country = "colombia"
	CountryJapan       Country = "japan"
	CountryOther       Country = "other"
)

// Countries lists every country in reporting order.
var Countries = []Country{CountrySpain, CountryNetherlands, CountryUSA, CountryColombia, CountryJapan, CountryOther}

var countryLabels = map[Country]string{
	CountrySpain:       "Spain",
	CountryNetherlands: "Netherlands",
	CountryUSA:         "USA",
	CountryColombia:    "Colombia",
	CountryJapan:       "Japan",
	CountryOther:       "Other",
}

// Valid reports whether c is a known country.
func (c Country) Valid() bool {
	_, ok := countryLabels[c]
	return ok
}

// Label returns the display label used in reports.
func (c Country) Label() string {
	if label, ok := countryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Project is a single tracked revenue line: signed backlog, a pipeline
// opportunity or a recurring product subscription.
//
// TCV is a denormalized copy kept for serialization consumers only. Derived
// figures are always recomputed from MonthlyAmount and DurationMonths.
type Project struct {
	ID             string  `json:"id" yaml:"id" mapstructure:"id"`
	Name           string  `json:"name" yaml:"name" mapstructure:"name"`
	Type           Type    `json:"type" yaml:"type" mapstructure:"type"`
	Segment        Segment `json:"segment" yaml:"segment" mapstructure:"segment"`
	Client         string  `json:"client" yaml:"client" mapstructure:"client"`
	ParentClient   string  `json:"parentClient,omitempty" yaml:"parentClient,omitempty" mapstructure:"parentClient"`
	Country        Country `json:"country" yaml:"country" mapstructure:"country"`
	Probability    float64 `json:"probability" yaml:"probability" mapstructure:"probability"`
	MonthlyAmount  float64 `json:"monthlyAmount" yaml:"monthlyAmount" mapstructure:"monthlyAmount"`
	StartYear      int     `json:"startYear,omitempty" yaml:"startYear,omitempty" mapstructure:"startYear"`
	StartMonth     Month   `json:"startMonth" yaml:"startMonth" mapstructure:"startMonth"`
	DurationMonths int     `json:"durationMonths" yaml:"durationMonths" mapstructure:"durationMonths"`
	Product        string  `json:"product,omitempty" yaml:"product,omitempty" mapstructure:"product"`
	TCV            float64 `json:"tcv" yaml:"tcv" mapstructure:"tcv"`
}

// EffectiveStartYear returns StartYear, falling back to the base year for
// records written before multi-year support existed.
func (p Project) EffectiveStartYear() int {
	if p.StartYear == 0 {
		return constants.BaseYear
	}
	return p.StartYear
}

// ClientKey is the roll-up key used by client aggregations: the parent
// client when present, the direct client otherwise.
func (p Project) ClientKey() string {
	if parent := strings.TrimSpace(p.ParentClient); parent != "" {
		return parent
	}
	return p.Client
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name           *string  `json:"name,omitempty"`
	Type           *Type    `json:"type,omitempty"`
	Segment        *Segment `json:"segment,omitempty"`
	Client         *string  `json:"client,omitempty"`
	ParentClient   *string  `json:"parentClient,omitempty"`
	Country        *Country `json:"country,omitempty"`
	Probability    *float64 `json:"probability,omitempty"`
	MonthlyAmount  *float64 `json:"monthlyAmount,omitempty"`
	StartYear      *int     `json:"startYear,omitempty"`
	StartMonth     *Month   `json:"startMonth,omitempty"`
	DurationMonths *int     `json:"durationMonths,omitempty"`
	Product        *string  `json:"product,omitempty"`
}

// Apply returns a copy of p with the patch fields applied. The id is never
// changed by a patch.
func (pt Patch) Apply(p Project) Project {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Type != nil {
		p.Type = *pt.Type
	}
	if pt.Segment != nil {
		p.Segment = *pt.Segment
	}
	if pt.Client != nil {
		p.Client = *pt.Client
	}
	if pt.ParentClient != nil {
		p.ParentClient = *pt.ParentClient
	}
	if pt.Country != nil {
		p.Country = *pt.Country
	}
	if pt.Probability != nil {
		p.Probability = *pt.Probability
	}
	if pt.MonthlyAmount != nil {
		p.MonthlyAmount = *pt.MonthlyAmount
	}
	if pt.StartYear != nil {
		p.StartYear = *pt.StartYear
	}
	if pt.StartMonth != nil {
		p.StartMonth = *pt.StartMonth
	}
	if pt.DurationMonths != nil {
		p.DurationMonths = *pt.DurationMonths
	}
	if pt.Product != nil {
		p.Product = *pt.Product
	}
	return p
}

// Normalize fills defaults and refreshes the denormalized TCV copy.
func Normalize(p Project) Project {
	if p.StartYear == 0 {
		p.StartYear = constants.BaseYear
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Client = strings.TrimSpace(p.Client)
	p.ParentClient = strings.TrimSpace(p.ParentClient)
	p.TCV = p.MonthlyAmount * float64(p.DurationMonths)
	return p
}
