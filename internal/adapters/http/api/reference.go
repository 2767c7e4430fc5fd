package api

import (
	"context"
	"net/http"

	service "github.com/okian/hoopline/internal/app"
	"github.com/okian/hoopline/internal/domain/reference"
)

// ReferenceDependencies exposes franchise and injury lookups.
type ReferenceDependencies interface {
	Teams() []reference.Team
	InjuryReport(ctx context.Context, team string) (service.InjuryReport, error)
}

// ReferenceHandler handles team and injury requests.
type ReferenceHandler struct {
	deps ReferenceDependencies
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(deps ReferenceDependencies) *ReferenceHandler {
	return &ReferenceHandler{deps: deps}
}

// HandleTeams handles GET /teams requests.
func (h *ReferenceHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Teams())
}

// HandleInjuries handles GET /injuries/{team} requests.
func (h *ReferenceHandler) HandleInjuries(w http.ResponseWriter, r *http.Request) {
	const op = "api.injuries"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.deps.InjuryReport(r.Context(), r.PathValue("team"))
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
