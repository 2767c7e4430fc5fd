package service

import (
	"time"

	"github.com/okian/hoopline/internal/adapters/repository"
	"github.com/okian/hoopline/internal/domain/adjust"
	"github.com/okian/hoopline/internal/domain/injury"
	"github.com/okian/hoopline/internal/domain/projection"
	"github.com/okian/hoopline/internal/domain/reference"
	"github.com/okian/hoopline/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the prediction ledger. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithReference sets the reference dataset.
func WithReference(tbl *reference.Table) Option {
	return func(s *Service) {
		if tbl != nil {
			s.table = tbl
		}
	}
}

// WithStatsProvider sets the team stats source.
func WithStatsProvider(p StatsProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.stats = p
		}
	}
}

// WithAbsenteeProvider sets the injury report source.
func WithAbsenteeProvider(p AbsenteeProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.absentees = p
		}
	}
}

// WithStreakProvider sets the last-10 record source.
func WithStreakProvider(p StreakProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.streaks = p
		}
	}
}

// WithNameMatcher selects how absentees are matched to the star tables.
func WithNameMatcher(m injury.NameMatcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithInjuryCap sets the injury penalty ceiling.
func WithInjuryCap(v float64) Option {
	return func(s *Service) {
		if v > 0 && v <= 1 {
			s.injuryCap = v
		}
	}
}

// WithAdjustOptions configures the situational adjustment set.
func WithAdjustOptions(opts ...adjust.Option) Option {
	return func(s *Service) { s.adjustOpts = append(s.adjustOpts, opts...) }
}

// WithEngineOptions configures the projection engine.
func WithEngineOptions(opts ...projection.Option) Option {
	return func(s *Service) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithRefreshCron sets the crontab spec for warming feed caches. Empty disables it.
func WithRefreshCron(spec string) Option {
	return func(s *Service) { s.refreshCron = spec }
}

// WithRefreshers registers feeds refreshed by the scheduler.
func WithRefreshers(r ...Refresher) Option {
	return func(s *Service) { s.refreshers = append(s.refreshers, r...) }
}

// WithFeedBudget bounds the feed lookups of a single projection. Zero or
// negative disables the bound.
func WithFeedBudget(d time.Duration) Option {
	return func(s *Service) { s.feedBudget = d }
}

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
