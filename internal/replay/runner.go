package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Outcome is the replay result of one game.
type Outcome struct {
	Game       Game                    `json:"game"`
	Projection *model.ProjectionResult `json:"projection,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Reconciled bool                    `json:"reconciled"`
}

// Result is what a replay run produced.
type Result struct {
	Outcomes []Outcome            `json:"outcomes"`
	Report   model.AccuracyReport `json:"report"`
	Stats    Stats                `json:"-"`
}

// Run executes the complete replay.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	log := logger.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.Named("replay")
	}
	stats := Stats{StartTime: time.Now()}

	slate, err := LoadSlate(cfg.SlateFile)
	if err != nil {
		return nil, err
	}
	stats.GamesLoaded = len(slate.Games)

	log.Info(ctx, "starting replay",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("slate", cfg.SlateFile),
		logger.Int("games", stats.GamesLoaded),
		logger.Int("workers", cfg.Workers),
		logger.Bool("dryRun", cfg.DryRun),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	outcomes := replayGames(ctx, client, cfg, slate.Games, &stats)

	var report model.AccuracyReport
	if err := client.do(ctx, http.MethodGet, "/report", nil, &report); err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	res := &Result{Outcomes: outcomes, Report: report, Stats: stats}

	if cfg.OutputFile != "" {
		if err := saveResult(cfg.OutputFile, res); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		}
	}

	log.Info(ctx, "replay finished",
		logger.Int("projected", stats.Projected),
		logger.Int("failed", stats.Failed),
		logger.Int("reconciled", stats.Reconciled),
		logger.Int("reconcileFailures", stats.ReconcileFails),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("mae", report.MeanAbsoluteError),
		logger.Float64("hitRate", report.OverUnderHitRate),
		logger.Int("samples", report.SampleCount),
	)
	return res, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient) error {
	var health struct {
		Status string `json:"status"`
	}
	if err := client.do(ctx, http.MethodGet, "/healthz", nil, &health); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", health.Status)
	}
	return nil
}

// replayGames projects and reconciles every game on a bounded worker pool.
// A failing game is reported in its outcome and never aborts the run.
func replayGames(ctx context.Context, client *httpClient, cfg *Config, games []Game, stats *Stats) []Outcome {
	outcomes := make([]Outcome, len(games))
	var projected, failed, reconciled, reconcileFails int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, game := range games {
		g.Go(func() error {
			game.DryRun = cfg.DryRun
			out := Outcome{Game: game}
			defer func() { outcomes[i] = out }()

			var res model.ProjectionResult
			if err := client.do(gctx, http.MethodPost, "/projections", game, &res); err != nil {
				atomic.AddInt64(&failed, 1)
				out.Error = err.Error()
				return nil
			}
			atomic.AddInt64(&projected, 1)
			out.Projection = &res

			if cfg.DryRun || game.ObservedTotal == nil || res.PredictionID == 0 {
				return nil
			}
			body := map[string]float64{"observed_total": *game.ObservedTotal}
			path := fmt.Sprintf("/predictions/%d/reconcile", res.PredictionID)
			if err := client.do(gctx, http.MethodPost, path, body, nil); err != nil {
				atomic.AddInt64(&reconcileFails, 1)
				out.Error = "reconcile: " + err.Error()
				return nil
			}
			atomic.AddInt64(&reconciled, 1)
			out.Reconciled = true
			return nil
		})
	}
	_ = g.Wait()

	stats.Projected = int(projected)
	stats.Failed = int(failed)
	stats.Reconciled = int(reconciled)
	stats.ReconcileFails = int(reconcileFails)
	return outcomes
}

// saveResult writes the run result as indented JSON.
func saveResult(filename string, res *Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}
