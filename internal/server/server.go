// Package server exposes the project store and every derived forecast view
// over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/config"
	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/internal/store"
)

type handler struct {
	logger      *zap.Logger
	repo        store.Repository
	conf        *config.Configuration
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the project and forecast API.
func NewHandler(logger *zap.Logger, repo store.Repository, conf *config.Configuration, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = config.Default()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		repo:        repo,
		conf:        conf,
		maxBodySize: conf.MaxBodySizeBytes(),
		version:     trimmedVersion,
	}

	router := mux.NewRouter()
	router.Use(h.logRequests)

	api := router.PathPrefix("/api").Subrouter()

	projects := api.PathPrefix("/projects").Subrouter()
	projects.HandleFunc("", h.handleListProjects).Methods(http.MethodGet)
	projects.HandleFunc("", h.handleCreateProject).Methods(http.MethodPost)
	projects.HandleFunc("/reset", h.handleResetProjects).Methods(http.MethodPost)
	projects.HandleFunc("/{id}", h.handleGetProject).Methods(http.MethodGet)
	projects.HandleFunc("/{id}", h.handleUpdateProject).Methods(http.MethodPatch)
	projects.HandleFunc("/{id}", h.handleDeleteProject).Methods(http.MethodDelete)

	views := api.PathPrefix("/forecast").Subrouter()
	views.HandleFunc("/grid", h.handleGrid).Methods(http.MethodGet)
	views.HandleFunc("/scenarios", h.handleScenarios).Methods(http.MethodGet)
	views.HandleFunc("/summary", h.handleSummary).Methods(http.MethodGet)
	views.HandleFunc("/funnel", h.handleFunnel).Methods(http.MethodGet)
	views.HandleFunc("/top", h.handleTop).Methods(http.MethodGet)

	export := api.PathPrefix("/export").Subrouter()
	export.HandleFunc("/projects.csv", h.handleExportProjects).Methods(http.MethodGet)
	export.HandleFunc("/{year:[0-9]+}.csv", h.handleExportYear).Methods(http.MethodGet)

	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	return router
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// parseYear reads the year query parameter, defaulting to the base year.
func (h *handler) parseYear(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return h.conf.Forecast.BaseYear, nil
	}
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &project.ValidationError{Field: "year", Message: "must be a whole number"}
	}
	if !h.conf.IsSupportedYear(year) {
		return 0, &project.ValidationError{
			Field:   "year",
			Message: "must be one of " + joinYears(h.conf.Forecast.SupportedYears),
		}
	}
	return year, nil
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

// decodeBody reads a JSON request body capped at maxBodySize.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) (int, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds limit of %d bytes", h.maxBodySize)
		}
		return http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return http.StatusBadRequest, fmt.Errorf("failed to decode request body: %w", err)
	}
	return http.StatusOK, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var vErr *project.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErr(w http.ResponseWriter, err error, op string) {
	h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Warn("request rejected", fields...)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("request served",
			zap.String("op", "server.logRequests"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
