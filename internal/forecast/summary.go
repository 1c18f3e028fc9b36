package forecast

import (
	"sort"

	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
	"github.com/iwvelando/revenue-forecast/pkg/mathutil"
)

// Summary is the dashboard roll-up for one year. All amounts are weighted
// revenue recognized within the year.
type Summary struct {
	Year int `json:"year"`

	TotalBacklog          float64 `json:"totalBacklog"`
	TotalPipelineWeighted float64 `json:"totalPipelineWeighted"`
	TotalPipelineTCV      float64 `json:"totalPipelineTcv"`
	TotalProducts         float64 `json:"totalProducts"`
	TotalForecast         float64 `json:"totalForecast"`

	IgnisRevenue      float64 `json:"ignisRevenue"`
	IgnisPercent      float64 `json:"ignisPercent"`
	ConcentrationRisk bool    `json:"concentrationRisk"`

	MonthlyTotals   Monthly `json:"monthlyTotals"`
	MonthlyBacklog  Monthly `json:"monthlyBacklog"`
	MonthlyPipeline Monthly `json:"monthlyPipeline"`
	MonthlyProducts Monthly `json:"monthlyProducts"`

	ByCountry map[string]float64 `json:"byCountry"`
	ByClient  map[string]float64 `json:"byClient"`
	BySegment map[string]float64 `json:"bySegment"`

	Clients      []string       `json:"clients"`
	ProjectCount int            `json:"projectCount"`
	Target       TargetProgress `json:"target"`
}

// TargetProgress compares the forecast against the annual target. The
// layered percentages stack backlog, then pipeline, then products, each
// capped at 100.
type TargetProgress struct {
	Target            float64 `json:"target"`
	Forecast          float64 `json:"forecast"`
	FulfilmentPercent float64 `json:"fulfilmentPercent"`
	BacklogPercent    float64 `json:"backlogPercent"`
	PipelinePercent   float64 `json:"pipelinePercent"`
	ProductPercent    float64 `json:"productPercent"`
	Gap               float64 `json:"gap"`
}

// Amount is a labeled total, used for ranked category listings.
type Amount struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
}

// Summarize computes the dashboard summary of projects for year against the
// given annual target. A non-positive target yields zero percentages.
func Summarize(projects []project.Project, year int, target float64) Summary {
	s := Summary{
		Year:         year,
		ByCountry:    make(map[string]float64),
		ByClient:     make(map[string]float64),
		BySegment:    make(map[string]float64),
		Clients:      []string{},
		ProjectCount: len(projects),
	}

	clients := make(map[string]struct{})
	for _, p := range projects {
		if _, seen := clients[p.Client]; !seen {
			clients[p.Client] = struct{}{}
			s.Clients = append(s.Clients, p.Client)
		}

		monthly := Allocate(p, year)
		if !monthly.HasValue() {
			continue
		}
		total := monthly.Sum()

		switch p.Type {
		case project.TypeBacklog:
			s.TotalBacklog += total
			s.MonthlyBacklog.Add(monthly)
		case project.TypePipeline:
			s.TotalPipelineWeighted += total
			s.TotalPipelineTCV += TCV(p)
			s.MonthlyPipeline.Add(monthly)
		case project.TypeProduct:
			s.TotalProducts += total
			s.MonthlyProducts.Add(monthly)
		}
		s.MonthlyTotals.Add(monthly)

		if p.Segment == project.SegmentIgnis {
			s.IgnisRevenue += total
		}
		s.ByCountry[string(p.Country)] += total
		s.ByClient[p.ClientKey()] += total
		s.BySegment[string(p.Segment)] += total
	}
	sort.Strings(s.Clients)

	s.TotalForecast = s.TotalBacklog + s.TotalPipelineWeighted + s.TotalProducts
	s.IgnisPercent = mathutil.CalculatePercentage(s.IgnisRevenue, s.TotalForecast)
	s.ConcentrationRisk = s.IgnisPercent > constants.ConcentrationRiskPercent
	s.Target = Progress(s.TotalBacklog, s.TotalPipelineWeighted, s.TotalProducts, target)
	return s
}

// Progress computes the target progress for the three category totals.
func Progress(backlog, pipeline, products, target float64) TargetProgress {
	forecast := backlog + pipeline + products
	gap := mathutil.Max(0, target-forecast)
	if mathutil.IsZero(gap) {
		gap = 0
	}
	return TargetProgress{
		Target:            target,
		Forecast:          forecast,
		FulfilmentPercent: mathutil.CalculatePercentage(forecast, target),
		BacklogPercent:    mathutil.CappedPercentage(backlog, target),
		PipelinePercent:   mathutil.CappedPercentage(backlog+pipeline, target),
		ProductPercent:    mathutil.CappedPercentage(forecast, target),
		Gap:               gap,
	}
}

// Ranked returns the entries of totals ordered by descending amount, with
// ties broken by key.
func Ranked(totals map[string]float64) []Amount {
	ranked := make([]Amount, 0, len(totals))
	for key, amount := range totals {
		ranked = append(ranked, Amount{Key: key, Amount: amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return ranked[i].Key < ranked[j].Key
	})
	return ranked
}
