package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/hoopline/internal/adapters/http/api"
	"github.com/okian/hoopline/internal/adapters/repository"
	service "github.com/okian/hoopline/internal/app"
	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/internal/domain/reference"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies records the last request and returns canned answers.
type mockDependencies struct {
	lastProject service.ProjectRequest
	projectErr  error

	records      []model.PredictionRecord
	lastFilter   model.Filter
	reconcileErr error
	report       model.AccuracyReport
}

func (m *mockDependencies) Project(_ context.Context, req service.ProjectRequest) (model.ProjectionResult, error) {
	m.lastProject = req
	if m.projectErr != nil {
		return model.ProjectionResult{}, m.projectErr
	}
	return model.ProjectionResult{
		ID:           "abc",
		PredictionID: 7,
		Home:         model.TeamLine{Team: req.HomeTeam, Final: 119.5},
		Away:         model.TeamLine{Team: req.AwayTeam, Final: 112.0},
		Total:        231.5,
		Spread:       -7.5,
		CasinoLine:   req.CasinoLine,
		Call:         model.CallOver,
	}, nil
}

func (m *mockDependencies) Predictions(_ context.Context, f model.Filter) ([]model.PredictionRecord, error) {
	m.lastFilter = f
	return m.records, nil
}

func (m *mockDependencies) Reconcile(_ context.Context, id int64, observed float64) (model.PredictionRecord, error) {
	if m.reconcileErr != nil {
		return model.PredictionRecord{}, m.reconcileErr
	}
	return model.PredictionRecord{ID: id, PredictedTotal: 231.5, ObservedTotal: &observed}, nil
}

func (m *mockDependencies) Report(_ context.Context, f model.Filter) (model.AccuracyReport, error) {
	m.lastFilter = f
	return m.report, nil
}

func (m *mockDependencies) Teams() []reference.Team {
	return []reference.Team{{Name: "Lakers", City: "Los Angeles"}}
}

func (m *mockDependencies) InjuryReport(_ context.Context, team string) (service.InjuryReport, error) {
	if team != "lakers" {
		return service.InjuryReport{}, fmt.Errorf("%w: %q", service.ErrUnknownTeam, team)
	}
	return service.InjuryReport{Team: "Lakers", Absences: []model.Absence{}, Cap: 0.3}, nil
}

func (m *mockDependencies) GetStats() map[string]interface{} {
	return map[string]interface{}{"predictions": len(m.records)}
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, nil).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Then health should expose metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then health should answer JSON clients", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then stats should be served with a request id", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			So(w.Body.String(), ShouldContainSubstring, "generatedAt")
		})

		Convey("Then a caller's request id should be echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/teams", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "trace-1")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "trace-1")
		})

		Convey("Then teams should be listed", func() {
			w := do(mux, http.MethodGet, "/teams", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var teams []reference.Team
			So(json.Unmarshal(w.Body.Bytes(), &teams), ShouldBeNil)
			So(teams, ShouldHaveLength, 1)
		})

		Convey("Then the wrong method should be not found", func() {
			w := do(mux, http.MethodGet, "/projections", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestProjectionsHandler(t *testing.T) {
	Convey("Given a projections endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When posting a valid matchup", func() {
			w := do(mux, http.MethodPost, "/projections", `{
				"home_team": "Lakers",
				"away_team": "Celtics",
				"casino_line": 228.5,
				"referee": "over",
				"home": {"played_yesterday": true, "record": "8-2", "absentees": ["LeBron James"]},
				"away": {"injury_penalty": 0.1, "revenge": true}
			}`)

			Convey("Then the result should be created", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var res model.ProjectionResult
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.Total, ShouldEqual, 231.5)
				So(res.PredictionID, ShouldEqual, 7)
			})

			Convey("Then the request should reach the service intact", func() {
				req := deps.lastProject
				So(req.CasinoLine, ShouldEqual, 228.5)
				So(req.Referee, ShouldEqual, "over")
				So(req.Home.PlayedYesterday, ShouldBeTrue)
				So(req.Home.Record, ShouldEqual, "8-2")
				So(req.Home.Absentees, ShouldResemble, []string{"LeBron James"})
				So(req.Away.Absentees, ShouldBeNil)
				So(*req.Away.InjuryPenalty, ShouldEqual, 0.1)
				So(req.Away.Revenge, ShouldBeTrue)
			})
		})

		Convey("When posting a dry run", func() {
			w := do(mux, http.MethodPost, "/projections", `{"home_team":"Lakers","away_team":"Celtics","casino_line":220,"dry_run":true}`)

			Convey("Then the status should be OK", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastProject.DryRun, ShouldBeTrue)
			})
		})

		Convey("When fields are missing", func() {
			cases := map[string]string{
				"missing home_team":    `{"away_team":"Celtics","casino_line":220}`,
				"missing away_team":    `{"home_team":"Lakers","casino_line":220}`,
				"missing casino_line":  `{"home_team":"Lakers","away_team":"Celtics"}`,
				"must not be negative": `{"home_team":"Lakers","away_team":"Celtics","casino_line":-1}`,
			}
			for want, body := range cases {
				w := do(mux, http.MethodPost, "/projections", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, want)
			}
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/projections", `{`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service rejects the team", func() {
			deps.projectErr = fmt.Errorf("%w: home %q", service.ErrUnknownTeam, "Sonics")
			w := do(mux, http.MethodPost, "/projections", `{"home_team":"Sonics","away_team":"Celtics","casino_line":220}`)

			Convey("Then it should be unprocessable", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "unknown_team")
			})
		})

		Convey("When the service rejects the input", func() {
			deps.projectErr = fmt.Errorf("%w: bad referee", service.ErrInvalidRequest)
			w := do(mux, http.MethodPost, "/projections", `{"home_team":"Lakers","away_team":"Celtics","casino_line":220}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the ledger fails", func() {
			deps.projectErr = errors.New("disk full")
			w := do(mux, http.MethodPost, "/projections", `{"home_team":"Lakers","away_team":"Celtics","casino_line":220}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestPredictionsHandler(t *testing.T) {
	Convey("Given a predictions endpoint", t, func() {
		observed := 240.0
		deps := &mockDependencies{
			records: []model.PredictionRecord{
				{ID: 1, Date: "2026-03-01", HomeTeam: "Lakers", AwayTeam: "Celtics", PredictedTotal: 231.5, CasinoLine: 228.5, ObservedTotal: &observed},
			},
			report: model.AccuracyReport{MeanAbsoluteError: 8.5, SampleCount: 1, OverUnderHitRate: 1, Hits: 1},
		}
		mux := newMux(deps)

		Convey("When listing with a filter", func() {
			w := do(mux, http.MethodGet, "/predictions?date=2026-03-01&team=Lakers", "")

			Convey("Then the filter should be forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastFilter, ShouldResemble, model.Filter{Date: "2026-03-01", Team: "Lakers"})
				So(w.Body.String(), ShouldContainSubstring, `"count":1`)
			})
		})

		Convey("When the ledger is empty", func() {
			deps.records = nil
			w := do(mux, http.MethodGet, "/predictions", "")

			Convey("Then an empty list should be returned", func() {
				So(w.Body.String(), ShouldContainSubstring, `"predictions":[]`)
			})
		})

		Convey("When reconciling", func() {
			w := do(mux, http.MethodPost, "/predictions/1/reconcile", `{"observed_total": 240}`)

			Convey("Then the updated record should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rec model.PredictionRecord
				So(json.Unmarshal(w.Body.Bytes(), &rec), ShouldBeNil)
				So(rec.ID, ShouldEqual, 1)
				So(*rec.ObservedTotal, ShouldEqual, 240)
			})
		})

		Convey("When reconciling with bad input", func() {
			So(do(mux, http.MethodPost, "/predictions/abc/reconcile", `{"observed_total": 240}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/predictions/1/reconcile", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/predictions/1/reconcile", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the prediction does not exist", func() {
			deps.reconcileErr = fmt.Errorf("reconcile prediction 9: %w", repository.ErrNotFound)
			w := do(mux, http.MethodPost, "/predictions/9/reconcile", `{"observed_total": 240}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the prediction is already reconciled", func() {
			deps.reconcileErr = repository.ErrAlreadyReconciled
			w := do(mux, http.MethodPost, "/predictions/1/reconcile", `{"observed_total": 240}`)
			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When requesting the report", func() {
			w := do(mux, http.MethodGet, "/report?team=Celtics", "")

			Convey("Then accuracy should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rep model.AccuracyReport
				So(json.Unmarshal(w.Body.Bytes(), &rep), ShouldBeNil)
				So(rep.MeanAbsoluteError, ShouldEqual, 8.5)
				So(deps.lastFilter.Team, ShouldEqual, "Celtics")
			})
		})
	})
}

func TestReferenceHandler(t *testing.T) {
	Convey("Given an injuries endpoint", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When the team is known", func() {
			w := do(mux, http.MethodGet, "/injuries/lakers", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"team":"Lakers"`)
		})

		Convey("When the team is unknown", func() {
			w := do(mux, http.MethodGet, "/injuries/sonics", "")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then kind and cause should both match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then Wrap of nil should be nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
		})
	})
}
