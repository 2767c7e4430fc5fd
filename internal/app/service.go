// Package service provides the core business service that implements
// the dependencies required by the HTTP API: projecting matchups, recording
// them in the ledger, reconciling them with real totals and reporting
// accuracy.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/okian/hoopline/internal/adapters/repository"
	"github.com/okian/hoopline/internal/domain/adjust"
	"github.com/okian/hoopline/internal/domain/backtest"
	"github.com/okian/hoopline/internal/domain/injury"
	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/internal/domain/projection"
	"github.com/okian/hoopline/internal/domain/reference"
	"github.com/okian/hoopline/pkg/logger"
	"github.com/okian/hoopline/pkg/metrics"
)

// StatsProvider supplies base ratings for a canonical team.
type StatsProvider interface {
	TeamProfile(ctx context.Context, team string) (model.TeamStatProfile, error)
}

// AbsenteeProvider supplies the absent players of a canonical team.
type AbsenteeProvider interface {
	Absentees(ctx context.Context, team string) ([]string, error)
}

// StreakProvider supplies a canonical team's last-10 "W-L" record.
type StreakProvider interface {
	LastTen(ctx context.Context, team string) (string, error)
}

// Refresher is a cached source that can be warmed on a schedule.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// DefaultFeedBudget bounds feed lookups per projection. It stays well under
// the HTTP write timeout so a hanging upstream cannot outlast the response.
const DefaultFeedBudget = 4 * time.Second

// Service implements the API dependencies for the projection system.
type Service struct {
	mu sync.RWMutex

	// Core components
	table     *reference.Table
	stats     StatsProvider
	absentees AbsenteeProvider
	streaks   StreakProvider
	store     repository.Store
	evaluator *injury.Evaluator
	adjuster  *adjust.Set
	engine    *projection.Engine
	scheduler gocron.Scheduler

	// Configuration
	matcher     injury.NameMatcher
	injuryCap   float64
	adjustOpts  []adjust.Option
	engineOpts  []projection.Option
	refreshCron string
	refreshers  []Refresher
	feedBudget  time.Duration
	now         func() time.Time

	// State
	started bool
	closed  bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration. Feeds default to
// the embedded reference table with no injuries and no standings.
func New(opts ...Option) *Service {
	s := &Service{
		table:      reference.Default(),
		matcher:    injury.SubstringMatcher{},
		injuryCap:  injury.DefaultInjuryCap,
		feedBudget: DefaultFeedBudget,
		now:        time.Now,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.stats == nil {
		s.stats = tableStats{s.table}
	}
	if s.absentees == nil {
		s.absentees = noAbsentees{}
	}
	if s.streaks == nil {
		s.streaks = noStreaks{}
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger))
	}
	s.evaluator = injury.NewEvaluator(
		injury.NewTableClassifier(s.table, injury.WithMatcher(s.matcher)),
		injury.WithCap(s.injuryCap),
	)
	s.adjuster = adjust.NewSet(s.adjustOpts...)
	s.engine = projection.NewEngine(s.engineOpts...)
	return s
}

// Start initializes the refresh scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting projection service...")

	if s.refreshCron != "" && len(s.refreshers) > 0 {
		sched, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		jobCtx := context.WithoutCancel(ctx)
		_, err = sched.NewJob(
			gocron.CronJob(s.refreshCron, false),
			gocron.NewTask(func() { s.RefreshFeeds(jobCtx) }),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return fmt.Errorf("schedule feed refresh %q: %w", s.refreshCron, err)
		}
		sched.Start()
		s.scheduler = sched
	}

	s.started = true
	s.logger.Info(ctx, "projection service started",
		logger.String("refreshCron", s.refreshCron),
		logger.Int("feeds", len(s.refreshers)),
		logger.Float64("injuryCap", s.evaluator.Cap()),
	)
	return nil
}

// Stop shuts down the scheduler and closes the ledger. The ledger is closed
// even when Start never ran or failed.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	if s.started {
		s.logger.Info(ctx, "stopping projection service...")
		if s.scheduler != nil {
			if err := s.scheduler.Shutdown(); err != nil {
				s.logger.Warn(ctx, "scheduler shutdown", logger.Error(err))
			}
			s.scheduler = nil
		}
		s.started = false
		s.logger.Info(ctx, "projection service stopped")
	}
	if !s.closed {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "ledger close", logger.Error(err))
		}
		s.closed = true
	}
}

// RefreshFeeds reloads every registered feed. Failures are logged; the
// caches keep serving their previous payloads.
func (s *Service) RefreshFeeds(ctx context.Context) {
	for i, r := range s.refreshers {
		if err := r.Refresh(ctx); err != nil {
			s.logger.Warn(ctx, "feed refresh failed", logger.Int("feed", i), logger.Error(err))
		}
	}
}

// SideRequest is the situational input for one team.
type SideRequest struct {
	PlayedYesterday bool
	Revenge         bool
	// Record is the last-10 "W-L"; empty asks the standings feed.
	Record string
	// Absentees overrides the injury feed when non-nil, even if empty.
	Absentees []string
	// InjuryPenalty overrides absentee evaluation entirely. Clamped to the cap.
	InjuryPenalty *float64
}

// ProjectRequest is the input of one projection.
type ProjectRequest struct {
	Date       string // YYYY-MM-DD, defaults to today
	HomeTeam   string
	AwayTeam   string
	CasinoLine float64
	SpreadLine *float64 // posted home handicap, optional
	Referee    string   // neutral, over or under
	Home       SideRequest
	Away       SideRequest
	// DryRun skips the ledger.
	DryRun bool
}

// Project computes a projection and records it in the ledger.
func (s *Service) Project(ctx context.Context, req ProjectRequest) (model.ProjectionResult, error) {
	start := time.Now()

	home, away, err := s.canonicalTeams(req.HomeTeam, req.AwayTeam)
	if err != nil {
		return model.ProjectionResult{}, err
	}
	date, err := s.date(req.Date)
	if err != nil {
		return model.ProjectionResult{}, err
	}
	if req.CasinoLine < 0 {
		return model.ProjectionResult{}, fmt.Errorf("%w: casino line must not be negative", ErrInvalidRequest)
	}
	referee, err := adjust.ParseRefereeTrend(req.Referee)
	if err != nil {
		return model.ProjectionResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	feedCtx, cancel := s.feedContext(ctx)
	homeSide, homeCtx := s.side(feedCtx, adjust.Home, home, req.Home)
	awaySide, awayCtx := s.side(feedCtx, adjust.Away, away, req.Away)
	cancel()

	out := s.engine.Project(projection.Matchup{Home: homeSide, Away: awaySide, Referee: referee})
	d := out.Decomposition

	res := model.ProjectionResult{
		ID:                 uuid.NewString(),
		Date:               date,
		Home:               teamLine(home, d.Home, d.HomeFinal, out.EngineHome),
		Away:               teamLine(away, d.Away, d.AwayFinal, out.EngineAway),
		HomeContext:        homeCtx,
		AwayContext:        awayCtx,
		RefereeTrend:       referee.String(),
		Blowout:            d.Blowout,
		BlowoutMessage:     d.Message,
		Total:              out.Total,
		EngineTotal:        out.EngineTotal,
		Spread:             out.Spread,
		HomeWinProbability: out.HomeWinProbability,
		CasinoLine:         req.CasinoLine,
		TotalEdge:          projection.Round1(out.Total - req.CasinoLine),
		Call:               backtest.Call(out.Total, req.CasinoLine),
	}
	if req.SpreadLine != nil {
		line := *req.SpreadLine
		edge := projection.Round1(out.Spread - line)
		res.SpreadLine = &line
		res.SpreadEdge = &edge
	}

	if !req.DryRun {
		id, err := s.record(ctx, model.PredictionRecord{
			Date:           date,
			HomeTeam:       home,
			AwayTeam:       away,
			PredictedTotal: res.Total,
			CasinoLine:     req.CasinoLine,
		})
		if err != nil {
			return model.ProjectionResult{}, err
		}
		res.PredictionID = id
	}

	metrics.RecordProjection(float64(time.Since(start).Microseconds())/1000, res.Total, res.Blowout)
	metrics.RecordInjuryPenalty(adjust.Home.String(), homeCtx.InjuryPenalty)
	metrics.RecordInjuryPenalty(adjust.Away.String(), awayCtx.InjuryPenalty)
	s.logger.Debug(ctx, "projection computed",
		logger.String("id", res.ID),
		logger.String("home", home),
		logger.String("away", away),
		logger.Float64("total", res.Total),
		logger.Bool("blowout", res.Blowout),
	)
	return res, nil
}

// feedContext bounds the time spent gathering feed data for one request.
// Lookups still pending at the deadline degrade to their fallbacks.
func (s *Service) feedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.feedBudget <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.feedBudget)
}

// side gathers ratings, injuries and adjustments for one team. Every
// collaborator failure degrades to a documented default.
func (s *Service) side(ctx context.Context, which adjust.Side, team string, req SideRequest) (projection.Side, model.SideContext) {
	profile, err := s.stats.TeamProfile(ctx, team)
	if err != nil {
		s.logger.Warn(ctx, "no stats for team, using league average",
			logger.String("team", team), logger.Error(err))
		metrics.RecordFeedFallback("league_average")
		profile = s.table.LeagueAverage(team)
	}

	penalty, absences := s.injuries(ctx, team, req)

	record := req.Record
	if record == "" {
		if record, err = s.streaks.LastTen(ctx, team); err != nil {
			s.logger.Warn(ctx, "standings unavailable, streak neutral",
				logger.String("team", team), logger.Error(err))
			record = ""
		}
	}

	bundle := s.adjuster.Build(which, adjust.Input{
		PlayedYesterday: req.PlayedYesterday,
		Record:          record,
		Revenge:         req.Revenge,
	}, s.table.IsAltitudeVenue(team))

	return projection.Side{Profile: profile, Injury: penalty, Adjust: bundle},
		model.SideContext{
			InjuryPenalty: penalty,
			Absences:      absences,
			Fatigued:      bundle.Fatigued,
			Streak:        record,
			StreakLabel:   bundle.Streak.Label,
			StreakBonus:   bundle.Streak.Bonus,
			Revenge:       req.Revenge,
			StatsSource:   profile.Source,
		}
}

func (s *Service) injuries(ctx context.Context, team string, req SideRequest) (float64, []model.Absence) {
	if req.InjuryPenalty != nil {
		return min(max(*req.InjuryPenalty, 0), s.evaluator.Cap()), []model.Absence{}
	}
	names := req.Absentees
	if names == nil {
		var err error
		names, err = s.absentees.Absentees(ctx, team)
		if err != nil {
			s.logger.Warn(ctx, "injury report unavailable, assuming full roster",
				logger.String("team", team), logger.Error(err))
			metrics.RecordFeedFallback("injuries")
			names = nil
		}
	}
	return s.evaluator.Evaluate(names)
}

func (s *Service) record(ctx context.Context, rec model.PredictionRecord) (int64, error) {
	start := time.Now()
	id, err := s.store.Record(ctx, rec)
	s.ledgerOp(ctx, "record", start, err)
	if err != nil {
		return 0, fmt.Errorf("record prediction: %w", err)
	}
	return id, nil
}

// Reconcile attaches the observed total to a prediction and returns it.
func (s *Service) Reconcile(ctx context.Context, id int64, observed float64) (model.PredictionRecord, error) {
	if observed < 0 {
		return model.PredictionRecord{}, fmt.Errorf("%w: observed total must not be negative", ErrInvalidRequest)
	}
	start := time.Now()
	err := s.store.Reconcile(ctx, id, observed)
	s.ledgerOp(ctx, "reconcile", start, err)
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("reconcile prediction %d: %w", id, err)
	}
	return s.store.Get(ctx, id)
}

// Report computes accuracy over reconciled predictions passing f. The
// unfiltered report is also published as metrics.
func (s *Service) Report(ctx context.Context, f model.Filter) (model.AccuracyReport, error) {
	recs, err := s.Predictions(ctx, f)
	if err != nil {
		return model.AccuracyReport{}, err
	}
	rep := backtest.Accuracy(recs)
	if f == (model.Filter{}) {
		metrics.UpdateAccuracy(rep.MeanAbsoluteError, rep.OverUnderHitRate, rep.SampleCount)
	}
	return rep, nil
}

// Predictions lists ledger entries passing f.
func (s *Service) Predictions(ctx context.Context, f model.Filter) ([]model.PredictionRecord, error) {
	if f.Date != "" {
		if _, err := time.Parse(repository.DateLayout, f.Date); err != nil {
			return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRequest, f.Date)
		}
	}
	if f.Team != "" {
		team, ok := s.table.Canonical(f.Team)
		if !ok {
			metrics.RecordUnknownTeam()
			return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, f.Team)
		}
		f.Team = team
	}
	start := time.Now()
	recs, err := s.store.List(ctx, f)
	s.ledgerOp(ctx, "list", start, err)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return recs, nil
}

// Teams lists the known franchises.
func (s *Service) Teams() []reference.Team { return s.table.Teams() }

// InjuryReport is the classified absentee list of one team.
type InjuryReport struct {
	Team     string          `json:"team"`
	Absences []model.Absence `json:"absences"`
	Penalty  float64         `json:"penalty"`
	Cap      float64         `json:"cap"`
}

// InjuryReport classifies a team's current absentees.
func (s *Service) InjuryReport(ctx context.Context, team string) (InjuryReport, error) {
	name, ok := s.table.Canonical(team)
	if !ok {
		metrics.RecordUnknownTeam()
		return InjuryReport{}, fmt.Errorf("%w: %q", ErrUnknownTeam, team)
	}
	feedCtx, cancel := s.feedContext(ctx)
	defer cancel()
	penalty, absences := s.injuries(feedCtx, name, SideRequest{})
	return InjuryReport{Team: name, Absences: absences, Penalty: penalty, Cap: s.evaluator.Cap()}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     started,
		"teams":       len(s.table.Teams()),
		"injuryCap":   s.evaluator.Cap(),
		"refreshCron": s.refreshCron,
		"feeds":       len(s.refreshers),
	}

	ctx := context.Background()
	if recs, err := s.store.List(ctx, model.Filter{}); err == nil {
		reconciled := 0
		for _, r := range recs {
			if r.Reconciled() {
				reconciled++
			}
		}
		stats["predictions"] = len(recs)
		stats["reconciled"] = reconciled
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	stats["goroutines"] = goroutines
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(goroutines)

	return stats
}

func (s *Service) canonicalTeams(homeIn, awayIn string) (home, away string, err error) {
	home, ok := s.table.Canonical(homeIn)
	if !ok {
		metrics.RecordUnknownTeam()
		return "", "", fmt.Errorf("%w: home %q", ErrUnknownTeam, homeIn)
	}
	away, ok = s.table.Canonical(awayIn)
	if !ok {
		metrics.RecordUnknownTeam()
		return "", "", fmt.Errorf("%w: away %q", ErrUnknownTeam, awayIn)
	}
	if home == away {
		return "", "", fmt.Errorf("%w: %s cannot play itself", ErrInvalidRequest, home)
	}
	return home, away, nil
}

func (s *Service) date(in string) (string, error) {
	if in == "" {
		return s.now().Format(repository.DateLayout), nil
	}
	if _, err := time.Parse(repository.DateLayout, in); err != nil {
		return "", fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRequest, in)
	}
	return in, nil
}

func (s *Service) ledgerOp(ctx context.Context, op string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, repository.ErrAlreadyReconciled), errors.Is(err, repository.ErrInvalidRecord):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
		s.logger.Error(ctx, "ledger operation failed", logger.String("op", op), logger.Error(err))
	}
	_ = metrics.RecordLedgerOp(op, outcome, float64(time.Since(start).Microseconds())/1000)
}

func teamLine(team string, quarters [4]float64, final, engine float64) model.TeamLine {
	line := model.TeamLine{Team: team, Final: projection.Round1(final), EngineScore: engine}
	for i, q := range quarters {
		line.Quarters[i] = projection.Round1(q)
	}
	return line
}

// tableStats serves the reference table when no feed is configured.
type tableStats struct{ table *reference.Table }

func (t tableStats) TeamProfile(_ context.Context, team string) (model.TeamStatProfile, error) {
	if p, ok := t.table.Profile(team); ok {
		return p, nil
	}
	return model.TeamStatProfile{}, fmt.Errorf("no reference stats for %q", team)
}

type noAbsentees struct{}

func (noAbsentees) Absentees(context.Context, string) ([]string, error) { return nil, nil }

type noStreaks struct{}

func (noStreaks) LastTen(context.Context, string) (string, error) { return "", nil }
