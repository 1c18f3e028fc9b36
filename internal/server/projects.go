package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/forecast"
	"github.com/iwvelando/revenue-forecast/internal/project"
)

func (h *handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListProjects"

	filter, err := parseFilter(r)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, filter.Apply(projects))
}

func (h *handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondErr(w, err, "server.handleGetProject")
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateProject"

	var input project.Project
	if status, err := h.decodeBody(w, r, &input); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	created, err := h.repo.Add(r.Context(), input)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.logger.Info("project created",
		zap.String("op", op),
		zap.String("id", created.ID),
		zap.String("type", string(created.Type)),
	)
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateProject"

	var patch project.Patch
	if status, err := h.decodeBody(w, r, &patch); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	updated, err := h.repo.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteProject"

	id := mux.Vars(r)["id"]
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.logger.Info("project deleted", zap.String("op", op), zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleResetProjects(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleResetProjects"

	if err := h.repo.Reset(r.Context(), h.conf.Projects); err != nil {
		h.respondErr(w, err, op)
		return
	}
	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.logger.Info("projects reset to seed", zap.String("op", op), zap.Int("projects", len(projects)))
	h.writeJSON(w, http.StatusOK, projects)
}

// parseFilter builds a forecast.Filter from the type, segment, country,
// client, minProbability and maxProbability query parameters.
func parseFilter(r *http.Request) (forecast.Filter, error) {
	q := r.URL.Query()
	var f forecast.Filter

	t, err := forecast.ParseTypeFilter(q.Get("type"))
	if err != nil {
		return f, &project.ValidationError{Field: "type", Message: err.Error()}
	}
	f.Type = t

	if raw := strings.ToLower(strings.TrimSpace(q.Get("segment"))); raw != "" && raw != "all" {
		f.Segment = project.Segment(raw)
		if !f.Segment.Valid() {
			return f, &project.ValidationError{Field: "segment", Message: "unknown segment " + strconv.Quote(raw)}
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(q.Get("country"))); raw != "" && raw != "all" {
		f.Country = project.Country(raw)
		if !f.Country.Valid() {
			return f, &project.ValidationError{Field: "country", Message: "unknown country " + strconv.Quote(raw)}
		}
	}
	f.Client = strings.TrimSpace(q.Get("client"))

	if f.MinProbability, err = parseProbability(q.Get("minProbability"), "minProbability"); err != nil {
		return f, err
	}
	if f.MaxProbability, err = parseProbability(q.Get("maxProbability"), "maxProbability"); err != nil {
		return f, err
	}
	return f, nil
}

func parseProbability(raw, field string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return nil, &project.ValidationError{Field: field, Message: "must be a number in [0, 1]"}
	}
	return &v, nil
}
