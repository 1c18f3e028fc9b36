package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/forecast"
	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
	"github.com/iwvelando/revenue-forecast/pkg/output"
)

type gridResponse struct {
	Year    int              `json:"year"`
	GroupBy forecast.GroupBy `json:"groupBy"`
	Type    string           `json:"type"`
	Rows    []forecast.Row   `json:"rows"`
}

type funnelResponse struct {
	Bands []forecast.ProbabilityBand `json:"bands"`
}

// Each view below reads a single List snapshot.

func (h *handler) handleGrid(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGrid"
	q := r.URL.Query()

	year, err := h.parseYear(q.Get("year"))
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	groupBy, err := forecast.ParseGroupBy(q.Get("groupBy"))
	if err != nil {
		h.respondErr(w, &project.ValidationError{Field: "groupBy", Message: err.Error()}, op)
		return
	}
	typ, err := forecast.ParseTypeFilter(q.Get("type"))
	if err != nil {
		h.respondErr(w, &project.ValidationError{Field: "type", Message: err.Error()}, op)
		return
	}

	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	typeLabel := string(typ)
	if typeLabel == "" {
		typeLabel = "all"
	}
	h.writeJSON(w, http.StatusOK, gridResponse{
		Year:    year,
		GroupBy: groupBy,
		Type:    typeLabel,
		Rows:    forecast.BuildGrid(projects, forecast.GridOptions{Type: typ, GroupBy: groupBy, Year: year}),
	})
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarios"

	year, err := h.parseYear(r.URL.Query().Get("year"))
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, forecast.BuildScenarios(projects, year))
}

func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSummary"

	year, err := h.parseYear(r.URL.Query().Get("year"))
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, forecast.Summarize(projects, year, h.conf.TargetFor(year)))
}

func (h *handler) handleFunnel(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, "server.handleFunnel")
		return
	}
	h.writeJSON(w, http.StatusOK, funnelResponse{Bands: forecast.Funnel(projects)})
}

func (h *handler) handleTop(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTop"

	limit := constants.DefaultTopOpportunities
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondErr(w, &project.ValidationError{Field: "limit", Message: "must be a positive whole number"}, op)
			return
		}
		limit = n
	}

	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, forecast.TopOpportunities(projects, limit))
}

func (h *handler) handleExportProjects(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportProjects"

	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	var buf bytes.Buffer
	if err := output.WriteProjectsCSV(&buf, projects); err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeCSV(w, "projects.csv", buf.Bytes(), op)
}

func (h *handler) handleExportYear(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportYear"

	year, err := h.parseYear(mux.Vars(r)["year"])
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	var buf bytes.Buffer
	if err := output.WriteYearCSV(&buf, projects, year); err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeCSV(w, fmt.Sprintf("forecast-%d.csv", year), buf.Bytes(), op)
}

func (h *handler) writeCSV(w http.ResponseWriter, filename string, data []byte, op string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}
