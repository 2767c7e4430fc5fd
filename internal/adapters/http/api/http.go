// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/hoopline/internal/adapters/repository"
	service "github.com/okian/hoopline/internal/app"
	"github.com/okian/hoopline/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProjectionDependencies
	PredictionDependencies
	ReferenceDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	projectionsHandler *ProjectionsHandler
	predictionsHandler *PredictionsHandler
	referenceHandler   *ReferenceHandler
	log                logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		projectionsHandler: NewProjectionsHandler(deps),
		predictionsHandler: NewPredictionsHandler(deps),
		referenceHandler:   NewReferenceHandler(deps),
		log:                log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	wrap := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return RequestIDMiddleware(MetricsMiddleware(h, endpoint), s.log)
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/projections", wrap(s.projectionsHandler.HandlePostProjection, "projections"))
	mux.HandleFunc("/predictions", wrap(s.predictionsHandler.HandleListPredictions, "predictions"))
	mux.HandleFunc("/predictions/{id}/reconcile", wrap(s.predictionsHandler.HandleReconcile, "reconcile"))
	mux.HandleFunc("/report", wrap(s.predictionsHandler.HandleReport, "report"))
	mux.HandleFunc("/teams", wrap(s.referenceHandler.HandleTeams, "teams"))
	mux.HandleFunc("/injuries/{team}", wrap(s.referenceHandler.HandleInjuries, "injuries"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and ledger errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidRequest), errors.Is(err, repository.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrUnknownTeam):
		writeError(w, http.StatusUnprocessableEntity, "unknown_team", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrAlreadyReconciled):
		writeError(w, http.StatusConflict, "already_reconciled", err)
	case errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
