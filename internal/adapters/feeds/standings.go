package feeds

import (
	"context"
	"time"

	"github.com/okian/hoopline/internal/domain/reference"
	"github.com/okian/hoopline/pkg/logger"
)

// DefaultStandingsTTL refreshes last-10 records hourly.
const DefaultStandingsTTL = time.Hour

type standingsPayload struct {
	Teams []struct {
		Team string `json:"team"`
		L10  string `json:"l10"`
	} `json:"teams"`
}

// StandingsFeed serves last-10 records used for streak inertia.
type StandingsFeed struct {
	client *Client
	table  *reference.Table
	cache  *cache[map[string]string]
	log    logger.Logger
}

// NewStandingsFeed creates a standings source.
func NewStandingsFeed(client *Client, tbl *reference.Table, opts ...SourceOption) *StandingsFeed {
	s := newSourceSettings(DefaultStandingsTTL, opts)
	f := &StandingsFeed{client: client, table: tbl, log: s.log}
	f.cache = newCache(s, f.fetch)
	return f
}

// LastTen returns a canonical team's last-10 record, or "" when unknown.
func (f *StandingsFeed) LastTen(ctx context.Context, team string) (string, error) {
	if !f.client.Enabled() {
		return "", nil
	}
	all, _, err := f.cache.get(ctx)
	if err != nil {
		return "", err
	}
	return all[team], nil
}

// Refresh reloads the standings.
func (f *StandingsFeed) Refresh(ctx context.Context) error {
	if !f.client.Enabled() {
		return nil
	}
	_, err := f.cache.refresh(ctx)
	return err
}

func (f *StandingsFeed) fetch(ctx context.Context) (map[string]string, error) {
	var payload standingsPayload
	if err := f.client.FetchJSON(ctx, &payload); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(payload.Teams))
	for _, t := range payload.Teams {
		name, ok := f.table.Canonical(t.Team)
		if !ok {
			f.log.Debug(ctx, "standings feed team not recognised", logger.String("team", t.Team))
			continue
		}
		out[name] = t.L10
	}
	return out, nil
}
