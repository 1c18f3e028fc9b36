package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/config"
	"github.com/iwvelando/revenue-forecast/internal/forecast"
	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/internal/store"
	"github.com/iwvelando/revenue-forecast/pkg/mathutil"
	"github.com/iwvelando/revenue-forecast/pkg/testutil"
)

func seed() []project.Project {
	return []project.Project{
		{
			ID: "p1", Name: "Core banking", Type: project.TypeBacklog, Segment: project.SegmentIgnis,
			Client: "Acme", Country: project.CountrySpain, Probability: 1, MonthlyAmount: 1000,
			StartYear: 2026, StartMonth: project.Jan, DurationMonths: 12,
		},
		{
			ID: "p2", Name: "Data platform", Type: project.TypePipeline, Segment: project.SegmentNoIgnis,
			Client: "Globex Iberia", ParentClient: "Globex", Country: project.CountryNetherlands,
			Probability: 0.5, MonthlyAmount: 2000, StartYear: 2026, StartMonth: project.Nov, DurationMonths: 4,
		},
		{
			ID: "p3", Name: "Insights", Type: project.TypeProduct, Segment: project.SegmentNoIgnis,
			Client: "Initech", Country: project.CountryUSA, Probability: 0.8, MonthlyAmount: 500,
			StartYear: 2027, StartMonth: project.Mar, DurationMonths: 6, Product: "Insights",
		},
	}
}

func newTestHandler(t *testing.T) (http.Handler, store.Repository) {
	t.Helper()
	conf := config.Default()
	conf.Projects = seed()
	conf.Forecast.Targets = []config.Target{{Year: 2026, Amount: 20000}}

	repo := store.NewMemoryStore(conf.Projects, zap.NewNop())
	return NewHandler(zap.NewNop(), repo, conf, "1.2.3"), repo
}

func perform(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// Monthly allocations travel as month-keyed objects.
type monthlyBody map[string]float64

func (m monthlyBody) sum() float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

type rowBody struct {
	ID      string           `json:"id"`
	Kind    forecast.RowKind `json:"kind"`
	Total   float64          `json:"total"`
	Monthly monthlyBody      `json:"monthly"`
}

type gridBody struct {
	Year    int              `json:"year"`
	GroupBy forecast.GroupBy `json:"groupBy"`
	Type    string           `json:"type"`
	Rows    []rowBody        `json:"rows"`
}

func (g gridBody) rows() []forecast.Row {
	rows := make([]forecast.Row, len(g.Rows))
	for i, r := range g.Rows {
		rows[i] = forecast.Row{ID: r.ID, Kind: r.Kind, Total: r.Total}
	}
	return rows
}

type scenariosBody struct {
	Year        int         `json:"year"`
	Pessimistic monthlyBody `json:"pessimistic"`
	Expected    monthlyBody `json:"expected"`
	Optimistic  monthlyBody `json:"optimistic"`
}

type summaryBody struct {
	Year                  int                     `json:"year"`
	TotalBacklog          float64                 `json:"totalBacklog"`
	TotalPipelineWeighted float64                 `json:"totalPipelineWeighted"`
	MonthlyTotals         monthlyBody             `json:"monthlyTotals"`
	ByClient              map[string]float64      `json:"byClient"`
	Target                forecast.TargetProgress `json:"target"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHandleVersion(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := perform(t, h, http.MethodGet, "/api/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["version"] != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", resp["version"])
	}
}

func TestProjectLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := perform(t, h, http.MethodGet, "/api/projects", nil)
	var listed []project.Project
	decode(t, rr, &listed)
	if len(listed) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(listed))
	}

	input := map[string]interface{}{
		"name":           "Migration",
		"type":           "pipeline",
		"segment":        "ignis",
		"client":         "Umbrella",
		"country":        "japan",
		"probability":    0.3,
		"monthlyAmount":  1500,
		"startMonth":     "jun",
		"durationMonths": 10,
	}
	rr = perform(t, h, http.MethodPost, "/api/projects", input)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created project.Project
	decode(t, rr, &created)
	if created.ID == "" || created.StartYear != 2026 || created.TCV != 15000 {
		t.Errorf("unexpected created project %+v", created)
	}

	rr = perform(t, h, http.MethodPatch, "/api/projects/"+created.ID, map[string]interface{}{"probability": 0.6})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated project.Project
	decode(t, rr, &updated)
	if updated.Probability != 0.6 || updated.Name != "Migration" {
		t.Errorf("unexpected updated project %+v", updated)
	}

	rr = perform(t, h, http.MethodGet, "/api/projects/"+created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	rr = perform(t, h, http.MethodDelete, "/api/projects/"+created.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	rr = perform(t, h, http.MethodGet, "/api/projects/"+created.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rr.Code)
	}
}

func TestProjectErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
		status int
	}{
		{
			name:   "Malformed JSON",
			method: http.MethodPost,
			target: "/api/projects",
			body:   "{not json",
			status: http.StatusBadRequest,
		},
		{
			name:   "Invalid probability",
			method: http.MethodPost,
			target: "/api/projects",
			body: map[string]interface{}{
				"name": "Bad", "type": "pipeline", "segment": "ignis", "client": "X", "country": "spain",
				"probability": 1.5, "monthlyAmount": 1, "startMonth": "jan", "durationMonths": 1,
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "Duplicate id",
			method: http.MethodPost,
			target: "/api/projects",
			body: map[string]interface{}{
				"id": "p1", "name": "Dup", "type": "pipeline", "segment": "ignis", "client": "X", "country": "spain",
				"probability": 0.5, "monthlyAmount": 1, "startMonth": "jan", "durationMonths": 1,
			},
			status: http.StatusConflict,
		},
		{
			name:   "Patch unknown project",
			method: http.MethodPatch,
			target: "/api/projects/missing",
			body:   map[string]interface{}{"name": "x"},
			status: http.StatusNotFound,
		},
		{
			name:   "Patch to invalid duration",
			method: http.MethodPatch,
			target: "/api/projects/p1",
			body:   map[string]interface{}{"durationMonths": 0},
			status: http.StatusBadRequest,
		},
		{
			name:   "Delete unknown project",
			method: http.MethodDelete,
			target: "/api/projects/missing",
			status: http.StatusNotFound,
		},
		{
			name:   "Unknown filter segment",
			method: http.MethodGet,
			target: "/api/projects?segment=other",
			status: http.StatusBadRequest,
		},
		{
			name:   "Method not allowed",
			method: http.MethodPut,
			target: "/api/projects/p1",
			status: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := perform(t, h, tt.method, tt.target, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.status != http.StatusMethodNotAllowed {
				var resp map[string]string
				decode(t, rr, &resp)
				if resp["error"] == "" {
					t.Errorf("expected error message in response")
				}
			}
		})
	}
}

func TestListProjectsFilter(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{name: "segment and probability", target: "/api/projects?segment=no-ignis&minProbability=0.6", expected: []string{"p3"}},
		{name: "mixed case values", target: "/api/projects?segment=No-Ignis&country=USA", expected: []string{"p3"}},
		{name: "all in any case", target: "/api/projects?segment=ALL&country=All", expected: []string{"p1", "p2", "p3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := perform(t, h, http.MethodGet, tt.target, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var listed []project.Project
			decode(t, rr, &listed)
			ids := make([]string, len(listed))
			for i, p := range listed {
				ids[i] = p.ID
			}
			if strings.Join(ids, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("listed %v, expected %v", ids, tt.expected)
			}
		})
	}
}

func TestResetProjects(t *testing.T) {
	h, repo := newTestHandler(t)

	rr := perform(t, h, http.MethodDelete, "/api/projects/p1", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}

	rr = perform(t, h, http.MethodPost, "/api/projects/reset", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	projects, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if strings.Join(testutil.ProjectIDs(projects), ",") != "p1,p2,p3" {
		t.Errorf("expected seed restored, got %v", testutil.ProjectIDs(projects))
	}
	if restored := testutil.FindProject(projects, "p1"); restored == nil || restored.TCV != 12000 {
		t.Errorf("expected p1 restored with TCV 12000, got %+v", restored)
	}
}

func TestHandleGrid(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := perform(t, h, http.MethodGet, "/api/forecast/grid?groupBy=type&type=all", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp gridBody
	decode(t, rr, &resp)

	if resp.Year != 2026 || resp.GroupBy != forecast.GroupByType || resp.Type != "all" {
		t.Errorf("unexpected grid metadata %+v", resp)
	}
	rows := resp.rows()
	ids := testutil.RowIDs(rows)
	want := []string{"group:type:backlog", "project:p1", "group:type:pipeline", "project:p2", "total"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("row ids = %v, want %v", ids, want)
	}
	if pipeline := testutil.FindRow(rows, "project:p2"); pipeline == nil || pipeline.Total != 2000 {
		t.Errorf("expected weighted pipeline row of 2000, got %+v", pipeline)
	}
	total := testutil.FindRow(rows, "total")
	if total == nil || total.Total != 12000+2000 {
		t.Errorf("expected total 14000, got %+v", total)
	}
	last := resp.Rows[len(resp.Rows)-1].Monthly
	if last["jan"] != 1000 || last["nov"] != 2000 || last["dec"] != 2000 {
		t.Errorf("unexpected month-keyed totals %v", last)
	}
}

func TestHandleGridBadParams(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, target := range []string{
		"/api/forecast/grid?year=2025",
		"/api/forecast/grid?year=abc",
		"/api/forecast/grid?groupBy=country",
		"/api/forecast/grid?type=lead",
		"/api/forecast/scenarios?year=2031",
		"/api/forecast/summary?year=1999",
		"/api/forecast/top?limit=0",
		"/api/export/2030.csv",
	} {
		rr := perform(t, h, http.MethodGet, target, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", target, rr.Code)
		}
	}
}

func TestHandleScenarios(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := perform(t, h, http.MethodGet, "/api/forecast/scenarios?year=2027", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp scenariosBody
	decode(t, rr, &resp)

	// 2027: p2 Jan-Feb at 1000 weighted, p3 Mar-Aug at 400 weighted.
	if resp.Year != 2027 {
		t.Errorf("expected year 2027, got %d", resp.Year)
	}
	if resp.Pessimistic.sum() != 0 {
		t.Errorf("expected no backlog in 2027, got %.2f", resp.Pessimistic.sum())
	}
	if resp.Expected.sum() != 2000+2400 {
		t.Errorf("expected 4400, got %.2f", resp.Expected.sum())
	}
	if resp.Optimistic.sum() != 4000+3000 {
		t.Errorf("expected 7000, got %.2f", resp.Optimistic.sum())
	}
}

func TestHandleSummary(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := perform(t, h, http.MethodGet, "/api/forecast/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp summaryBody
	decode(t, rr, &resp)

	if resp.Year != 2026 || resp.TotalBacklog != 12000 || resp.TotalPipelineWeighted != 2000 {
		t.Errorf("unexpected summary %+v", resp)
	}
	if resp.Target.Target != 20000 || !mathutil.WithinTolerance(resp.Target.FulfilmentPercent, 70, 1e-9) {
		t.Errorf("unexpected target progress %+v", resp.Target)
	}
	if resp.ByClient["Globex"] != 2000 {
		t.Errorf("expected Globex consolidated under parent, got %v", resp.ByClient)
	}
	if resp.MonthlyTotals.sum() != 14000 {
		t.Errorf("expected monthly totals of 14000, got %.2f", resp.MonthlyTotals.sum())
	}
}

func TestHandleFunnelAndTop(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := perform(t, h, http.MethodGet, "/api/forecast/funnel", nil)
	var funnel funnelResponse
	decode(t, rr, &funnel)
	if len(funnel.Bands) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(funnel.Bands))
	}
	if funnel.Bands[0].Count != 1 || funnel.Bands[1].Count != 1 {
		t.Errorf("unexpected band counts %+v", funnel.Bands)
	}

	rr = perform(t, h, http.MethodGet, "/api/forecast/top?limit=1", nil)
	var top []project.Project
	decode(t, rr, &top)
	if len(top) != 1 || top[0].ID != "p2" {
		t.Errorf("expected p2 as top opportunity, got %+v", top)
	}
}

func TestHandleExport(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := perform(t, h, http.MethodGet, "/api/export/projects.csv", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("expected header plus 3 rows, got %d", len(records))
	}

	rr = perform(t, h, http.MethodGet, "/api/export/2027.csv", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "forecast-2027.csv") {
		t.Errorf("unexpected disposition %q", rr.Header().Get("Content-Disposition"))
	}
	records, err = csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected header plus 2 rows for 2027, got %d", len(records))
	}
}

func TestBodyLimit(t *testing.T) {
	conf := config.Default()
	conf.Server.MaxBodySize = "16"
	repo := store.NewMemoryStore(nil, nil)
	h := NewHandler(nil, repo, conf, "")

	rr := perform(t, h, http.MethodPost, "/api/projects", map[string]interface{}{"name": strings.Repeat("x", 64)})
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}
