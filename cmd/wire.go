package main

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/hoopline/internal/adapters/feeds"
	"github.com/okian/hoopline/internal/adapters/repository"
	app "github.com/okian/hoopline/internal/app"
	"github.com/okian/hoopline/internal/config"
	"github.com/okian/hoopline/internal/domain/adjust"
	"github.com/okian/hoopline/internal/domain/injury"
	"github.com/okian/hoopline/internal/domain/projection"
	"github.com/okian/hoopline/internal/domain/reference"
	"github.com/okian/hoopline/pkg/logger"
)

// buildService opens the ledger, builds the feeds and assembles the service
// from cfg.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	tbl := reference.Default()

	store, err := repository.Open(ctx, cfg.LedgerDriver, cfg.LedgerDSN,
		repository.WithStrictReconcile(cfg.LedgerStrictReconcile),
		repository.WithLogger(log.Named("ledger")),
	)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	clientOpts := []feeds.ClientOption{
		feeds.WithTimeout(time.Duration(cfg.FeedTimeoutMS) * time.Millisecond),
		feeds.WithRate(cfg.FeedRatePerSec),
		feeds.WithClientLogger(log.Named("feeds")),
	}
	sourceOpts := func(ttlSec int) []feeds.SourceOption {
		return []feeds.SourceOption{
			feeds.WithTTL(time.Duration(ttlSec) * time.Second),
			feeds.WithFailureBackoff(time.Duration(cfg.FeedBackoffSec) * time.Second),
			feeds.WithLogger(log.Named("feeds")),
		}
	}
	stats := feeds.NewStatsFeed(feeds.NewClient("stats", cfg.StatsFeedURL, clientOpts...), tbl, sourceOpts(cfg.StatsTTLSec)...)
	injuries := feeds.NewInjuryFeed(feeds.NewClient("injuries", cfg.InjuryFeedURL, clientOpts...), tbl, sourceOpts(cfg.InjuryTTLSec)...)
	standings := feeds.NewStandingsFeed(feeds.NewClient("standings", cfg.StandingsFeedURL, clientOpts...), tbl, sourceOpts(cfg.StandingsTTLSec)...)

	var matcher injury.NameMatcher = injury.SubstringMatcher{}
	if cfg.NameMatcher == config.MatcherFuzzy {
		matcher = injury.FuzzyMatcher{Threshold: cfg.FuzzyThreshold}
	}

	log.Info(ctx, "service wired",
		logger.String("ledger", cfg.LedgerDriver),
		logger.String("matcher", cfg.NameMatcher),
		logger.Bool("statsFeed", cfg.StatsFeedURL != ""),
		logger.Bool("injuryFeed", cfg.InjuryFeedURL != ""),
		logger.Bool("standingsFeed", cfg.StandingsFeedURL != ""),
	)

	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithReference(tbl),
		app.WithStatsProvider(stats),
		app.WithAbsenteeProvider(injuries),
		app.WithStreakProvider(standings),
		app.WithNameMatcher(matcher),
		app.WithInjuryCap(cfg.InjuryCap),
		app.WithAdjustOptions(adjust.WithRevengePoints(cfg.RevengePoints)),
		app.WithEngineOptions(
			projection.WithHomeCourtBonus(cfg.HomeCourtBonus),
			projection.WithBlowoutThreshold(cfg.BlowoutThreshold),
			projection.WithWinProbScale(cfg.WinProbScale),
		),
		app.WithFeedBudget(time.Duration(cfg.FeedBudgetMS)*time.Millisecond),
		app.WithRefreshCron(cfg.RefreshCron),
		app.WithRefreshers(stats, injuries, standings),
	), nil
}
