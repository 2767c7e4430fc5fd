package feeds

import (
	"context"
	"strings"
	"time"

	"github.com/okian/hoopline/internal/domain/reference"
	"github.com/okian/hoopline/pkg/logger"
)

// DefaultInjuryTTL keeps injury reports reasonably fresh near tip-off.
const DefaultInjuryTTL = 10 * time.Minute

type injuryPayload struct {
	Teams []struct {
		Team    string   `json:"team"`
		Players []string `json:"players"`
	} `json:"teams"`
}

// InjuryFeed serves per-team absentee lists.
type InjuryFeed struct {
	client *Client
	table  *reference.Table
	cache  *cache[map[string][]string]
	log    logger.Logger
}

// NewInjuryFeed creates an injury source.
func NewInjuryFeed(client *Client, tbl *reference.Table, opts ...SourceOption) *InjuryFeed {
	s := newSourceSettings(DefaultInjuryTTL, opts)
	f := &InjuryFeed{client: client, table: tbl, log: s.log}
	f.cache = newCache(s, f.fetch)
	return f
}

// Absentees returns the absent players of a canonical team. A disabled feed
// returns an empty list; an upstream failure returns the error so the caller
// can degrade.
func (f *InjuryFeed) Absentees(ctx context.Context, team string) ([]string, error) {
	if !f.client.Enabled() {
		return nil, nil
	}
	all, stale, err := f.cache.get(ctx)
	if err != nil {
		return nil, err
	}
	if stale {
		f.log.Warn(ctx, "serving stale injury report", logger.String("team", team))
	}
	players := all[strings.ToLower(team)]
	out := make([]string, len(players))
	copy(out, players)
	return out, nil
}

// Refresh reloads the injury report.
func (f *InjuryFeed) Refresh(ctx context.Context) error {
	if !f.client.Enabled() {
		return nil
	}
	_, err := f.cache.refresh(ctx)
	return err
}

func (f *InjuryFeed) fetch(ctx context.Context) (map[string][]string, error) {
	var payload injuryPayload
	if err := f.client.FetchJSON(ctx, &payload); err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(payload.Teams))
	for _, t := range payload.Teams {
		name, ok := f.table.Canonical(t.Team)
		if !ok {
			f.log.Debug(ctx, "injury feed team not recognised", logger.String("team", t.Team))
			continue
		}
		key := strings.ToLower(name)
		for _, p := range t.Players {
			if p = strings.TrimSpace(p); p != "" {
				out[key] = append(out[key], p)
			}
		}
	}
	return out, nil
}
