package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/hoopline/internal/app"
	"github.com/okian/hoopline/internal/domain/model"
)

// ProjectionDependencies defines the interface for computing projections.
type ProjectionDependencies interface {
	Project(ctx context.Context, req service.ProjectRequest) (model.ProjectionResult, error)
}

// ProjectionsHandler handles projection requests.
type ProjectionsHandler struct {
	deps ProjectionDependencies
}

// NewProjectionsHandler creates a new projections handler.
func NewProjectionsHandler(deps ProjectionDependencies) *ProjectionsHandler {
	return &ProjectionsHandler{deps: deps}
}

// sideRequest mirrors the OpenAPI schema for one side of a matchup.
type sideRequest struct {
	PlayedYesterday bool     `json:"played_yesterday"`
	Record          string   `json:"record"`
	Revenge         bool     `json:"revenge"`
	Absentees       []string `json:"absentees"`
	InjuryPenalty   *float64 `json:"injury_penalty"`
}

// projectionRequest mirrors the OpenAPI schema for POST /projections.
type projectionRequest struct {
	Date       string      `json:"date"`
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	CasinoLine *float64    `json:"casino_line"`
	SpreadLine *float64    `json:"spread_line"`
	Referee    string      `json:"referee"`
	Home       sideRequest `json:"home"`
	Away       sideRequest `json:"away"`
	DryRun     bool        `json:"dry_run"`
}

func (p projectionRequest) validate() error {
	switch {
	case strings.TrimSpace(p.HomeTeam) == "":
		return errors.New("missing home_team")
	case strings.TrimSpace(p.AwayTeam) == "":
		return errors.New("missing away_team")
	case p.CasinoLine == nil:
		return errors.New("missing casino_line")
	case *p.CasinoLine < 0:
		return errors.New("casino_line must not be negative")
	}
	for _, s := range []sideRequest{p.Home, p.Away} {
		if s.InjuryPenalty != nil && *s.InjuryPenalty < 0 {
			return errors.New("injury_penalty must not be negative")
		}
	}
	return nil
}

func (p projectionRequest) toService() service.ProjectRequest {
	side := func(s sideRequest) service.SideRequest {
		return service.SideRequest{
			PlayedYesterday: s.PlayedYesterday,
			Record:          s.Record,
			Revenge:         s.Revenge,
			Absentees:       s.Absentees,
			InjuryPenalty:   s.InjuryPenalty,
		}
	}
	return service.ProjectRequest{
		Date:       p.Date,
		HomeTeam:   p.HomeTeam,
		AwayTeam:   p.AwayTeam,
		CasinoLine: *p.CasinoLine,
		SpreadLine: p.SpreadLine,
		Referee:    p.Referee,
		Home:       side(p.Home),
		Away:       side(p.Away),
		DryRun:     p.DryRun,
	}
}

// HandlePostProjection handles POST /projections requests.
func (h *ProjectionsHandler) HandlePostProjection(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_projection"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req projectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Project(r.Context(), req.toService())
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	status := http.StatusCreated
	if req.DryRun {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}
