package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/hoopline/internal/domain/model"
)

// PredictionDependencies defines the interface for ledger operations.
type PredictionDependencies interface {
	Predictions(ctx context.Context, f model.Filter) ([]model.PredictionRecord, error)
	Reconcile(ctx context.Context, id int64, observed float64) (model.PredictionRecord, error)
	Report(ctx context.Context, f model.Filter) (model.AccuracyReport, error)
}

// PredictionsHandler handles ledger requests.
type PredictionsHandler struct {
	deps PredictionDependencies
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps PredictionDependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps}
}

type reconcileRequest struct {
	ObservedTotal *float64 `json:"observed_total"`
}

type predictionsResponse struct {
	Predictions []model.PredictionRecord `json:"predictions"`
	Count       int                      `json:"count"`
}

func filterFromQuery(r *http.Request) model.Filter {
	q := r.URL.Query()
	return model.Filter{Date: q.Get("date"), Team: q.Get("team")}
}

// HandleListPredictions handles GET /predictions?date=&team= requests.
func (h *PredictionsHandler) HandleListPredictions(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_predictions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	recs, err := h.deps.Predictions(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	if recs == nil {
		recs = []model.PredictionRecord{}
	}
	writeJSON(w, http.StatusOK, predictionsResponse{Predictions: recs, Count: len(recs)})
}

// HandleReconcile handles POST /predictions/{id}/reconcile requests.
func (h *PredictionsHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	const op = "api.reconcile"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid prediction id")))
		return
	}
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.ObservedTotal == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing observed_total")))
		return
	}
	rec, err := h.deps.Reconcile(r.Context(), id, *req.ObservedTotal)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleReport handles GET /report?date=&team= requests.
func (h *PredictionsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.report"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.deps.Report(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
