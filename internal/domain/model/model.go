// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
)

// QuarterSumTolerance is the allowed deviation of a quarter distribution from 1.0.
const QuarterSumTolerance = 0.011

// TeamStatProfile holds the base ratings for one team.
// Fields mirror the stats feed and the embedded reference table.
type TeamStatProfile struct {
	Team                string     // canonical franchise nickname, e.g. "Celtics"
	OffRating           float64    // points scored per game
	DefRating           float64    // points allowed per game
	Pace                float64    // pace factor, ~0.9..1.2
	QuarterDistribution [4]float64 // fraction of points per quarter
	Source              string     // where the ratings came from, see Source* constants
}

// Profile sources.
const (
	SourceLive          = "live"
	SourceReference     = "reference"
	SourceLeagueAverage = "league_average"
)

// Validate checks that the quarter distribution sums to one.
func (p TeamStatProfile) Validate() error {
	var sum float64
	for _, q := range p.QuarterDistribution {
		if q < 0 {
			return fmt.Errorf("%w: %s has a negative quarter fraction", ErrInvalidDistribution, p.Team)
		}
		sum += q
	}
	if math.Abs(sum-1) > QuarterSumTolerance {
		return fmt.Errorf("%w: %s quarters sum to %.3f", ErrInvalidDistribution, p.Team, sum)
	}
	return nil
}

// EvenQuarters is the distribution used when a team has none on record.
func EvenQuarters() [4]float64 { return [4]float64{0.25, 0.25, 0.25, 0.25} }

// StarTier classifies an absent player's impact.
type StarTier int

// Tiers, strongest first.
const (
	TierRolePlayer StarTier = iota
	TierKeyStarter
	TierElite
)

func (t StarTier) String() string {
	switch t {
	case TierElite:
		return "elite"
	case TierKeyStarter:
		return "key_starter"
	default:
		return "role_player"
	}
}

// Label is the human-readable tier marker shown next to a player.
func (t StarTier) Label() string {
	switch t {
	case TierElite:
		return "★★★ (Elite)"
	case TierKeyStarter:
		return "★★ (Key Starter)"
	default:
		return "★ (Rotation)"
	}
}

// Absence is one classified absentee.
type Absence struct {
	Name    string   `json:"name"`
	Tier    StarTier `json:"-"`
	Label   string   `json:"tier"`
	Penalty float64  `json:"penalty"`
}

// TeamLine is one side of a projection after quarter decomposition.
type TeamLine struct {
	Team        string     `json:"team"`
	Quarters    [4]float64 `json:"quarters"`
	Final       float64    `json:"final"`
	EngineScore float64    `json:"engine_score"` // before decomposition
}

// SideContext records the inputs that shaped one side's projection.
type SideContext struct {
	InjuryPenalty float64   `json:"injury_penalty"`
	Absences      []Absence `json:"absences"`
	Fatigued      bool      `json:"fatigued"`
	Streak        string    `json:"streak,omitempty"`
	StreakLabel   string    `json:"streak_label"`
	StreakBonus   float64   `json:"streak_bonus"`
	Revenge       bool      `json:"revenge"`
	StatsSource   string    `json:"stats_source"`
}

// ProjectionResult is the full output of one projection. It is never mutated
// after the service returns it.
type ProjectionResult struct {
	ID                 string      `json:"id"`
	PredictionID       int64       `json:"prediction_id,omitempty"`
	Date               string      `json:"date"`
	Home               TeamLine    `json:"home"`
	Away               TeamLine    `json:"away"`
	HomeContext        SideContext `json:"home_context"`
	AwayContext        SideContext `json:"away_context"`
	RefereeTrend       string      `json:"referee_trend"`
	Blowout            bool        `json:"blowout"`
	BlowoutMessage     string      `json:"blowout_message,omitempty"`
	Total              float64     `json:"total"`
	EngineTotal        float64     `json:"engine_total"`
	Spread             float64     `json:"spread"`
	HomeWinProbability float64     `json:"home_win_probability"`
	CasinoLine         float64     `json:"casino_line"`
	TotalEdge          float64     `json:"total_edge"`
	Call               string      `json:"call"` // "over" or "under"
	SpreadLine         *float64    `json:"spread_line,omitempty"`
	SpreadEdge         *float64    `json:"spread_edge,omitempty"`
}

// Over/under calls.
const (
	CallOver  = "over"
	CallUnder = "under"
)

// PredictionRecord is one persisted projection summary.
type PredictionRecord struct {
	ID             int64    `json:"id"`
	Date           string   `json:"date"` // YYYY-MM-DD
	HomeTeam       string   `json:"home_team"`
	AwayTeam       string   `json:"away_team"`
	PredictedTotal float64  `json:"predicted_total"`
	CasinoLine     float64  `json:"casino_line"`
	ObservedTotal  *float64 `json:"observed_total"` // nil until reconciled
}

// Reconciled reports whether an observed total is attached.
func (r PredictionRecord) Reconciled() bool { return r.ObservedTotal != nil }

// Filter narrows ledger queries. Zero value matches everything.
type Filter struct {
	Date string // exact YYYY-MM-DD match when set
	Team string // home or away team when set
}

// Matches reports whether r passes the filter.
func (f Filter) Matches(r PredictionRecord) bool {
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	if f.Team != "" && r.HomeTeam != f.Team && r.AwayTeam != f.Team {
		return false
	}
	return true
}

// AccuracyReport aggregates reconciled predictions.
type AccuracyReport struct {
	MeanAbsoluteError float64 `json:"mean_absolute_error"`
	SampleCount       int     `json:"sample_count"`
	OverUnderHitRate  float64 `json:"over_under_hit_rate"`
	Hits              int     `json:"hits"`
	Pushes            int     `json:"pushes"` // predicted or observed exactly on the line
}
