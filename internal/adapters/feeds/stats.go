package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/internal/domain/projection"
	"github.com/okian/hoopline/internal/domain/reference"
	"github.com/okian/hoopline/pkg/logger"
	"github.com/okian/hoopline/pkg/metrics"
)

// DefaultStatsTTL matches how often season averages meaningfully move.
const DefaultStatsTTL = 6 * time.Hour

// statsPayload is the stats feed body. Teams either carry ratings directly
// or season totals from which ratings are derived.
type statsPayload struct {
	Teams []struct {
		Team      string  `json:"team"`
		OffRating float64 `json:"off_rating"`
		DefRating float64 `json:"def_rating"`
		Pace      float64 `json:"pace"`
		Points    float64 `json:"pts"`
		PlusMinus float64 `json:"plus_minus"`
		Games     int     `json:"gp"`
	} `json:"teams"`
}

// StatsFeed serves team profiles from the live feed, then the reference table.
type StatsFeed struct {
	client *Client
	table  *reference.Table
	cache  *cache[map[string]model.TeamStatProfile]
	log    logger.Logger
}

// NewStatsFeed creates a stats source. A disabled client serves reference data only.
func NewStatsFeed(client *Client, tbl *reference.Table, opts ...SourceOption) *StatsFeed {
	s := newSourceSettings(DefaultStatsTTL, opts)
	f := &StatsFeed{client: client, table: tbl, log: s.log}
	f.cache = newCache(s, f.fetch)
	return f
}

// TeamProfile returns the profile for a canonical team name. Live ratings
// keep the reference quarter distribution since the feed carries none.
// Returns ErrDataUnavailable when neither source knows the team.
func (f *StatsFeed) TeamProfile(ctx context.Context, team string) (model.TeamStatProfile, error) {
	if f.client.Enabled() {
		live, stale, err := f.cache.get(ctx)
		switch {
		case err != nil:
			f.log.Warn(ctx, "stats feed unavailable, using reference table", logger.Error(err))
		case stale:
			f.log.Warn(ctx, "serving stale stats feed data", logger.String("team", team))
		}
		if p, ok := live[team]; ok {
			return p, nil
		}
		metrics.RecordFeedFallback(f.client.Name())
	}
	if p, ok := f.table.Profile(team); ok {
		return p, nil
	}
	return model.TeamStatProfile{}, fmt.Errorf("%w: stats for %q", ErrDataUnavailable, team)
}

// Refresh reloads the live feed.
func (f *StatsFeed) Refresh(ctx context.Context) error {
	if !f.client.Enabled() {
		return nil
	}
	_, err := f.cache.refresh(ctx)
	return err
}

func (f *StatsFeed) fetch(ctx context.Context) (map[string]model.TeamStatProfile, error) {
	var payload statsPayload
	if err := f.client.FetchJSON(ctx, &payload); err != nil {
		return nil, err
	}

	out := make(map[string]model.TeamStatProfile, len(payload.Teams))
	for _, t := range payload.Teams {
		name, ok := f.table.Canonical(t.Team)
		if !ok {
			f.log.Debug(ctx, "stats feed team not recognised", logger.String("team", t.Team))
			continue
		}
		off, def := t.OffRating, t.DefRating
		if off == 0 && t.Games > 0 {
			off = projection.Round1(t.Points / float64(t.Games))
			def = projection.Round1((t.Points - t.PlusMinus) / float64(t.Games))
		}
		if off <= 0 || def <= 0 {
			continue
		}
		pace := t.Pace
		ref, hasRef := f.table.Profile(name)
		if pace <= 0 {
			pace = 1
			if hasRef {
				pace = ref.Pace
			}
		}
		out[name] = model.TeamStatProfile{
			Team:                name,
			OffRating:           off,
			DefRating:           def,
			Pace:                pace,
			QuarterDistribution: f.table.Quarters(name),
			Source:              model.SourceLive,
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: stats feed returned no usable teams", ErrUpstream)
	}
	return out, nil
}
