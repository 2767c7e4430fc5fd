// Package projection turns team ratings and situational adjustments into a
// quarter-by-quarter score projection with a home win probability.
package projection

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/okian/hoopline/internal/domain/adjust"
	"github.com/okian/hoopline/internal/domain/model"
)

// Side is one team's inputs to a projection.
type Side struct {
	Profile model.TeamStatProfile
	Injury  float64 // capped injury penalty
	Adjust  adjust.Bundle
}

// Matchup is the full input of one projection.
type Matchup struct {
	Home    Side
	Away    Side
	Referee adjust.RefereeTrend
}

// Outcome is the engine, decomposition and win probability of one matchup.
type Outcome struct {
	EngineHome         float64
	EngineAway         float64
	Decomposition      Decomposition
	Total              float64 // quarter-level, rounded to 0.1
	EngineTotal        float64
	Spread             float64 // negated home margin, rounded to 0.1
	HomeWinProbability float64
}

// Engine combines ratings, penalties and adjustments into final scores.
type Engine struct {
	params     Params
	decomposer *Decomposer
}

// NewEngine creates an Engine with default parameters.
func NewEngine(opts ...Option) *Engine {
	p := DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &Engine{params: p, decomposer: &Decomposer{params: p}}
}

// Params returns the active constants.
func (e *Engine) Params() Params { return e.params }

// Score returns the engine-level final pair, rounded to 0.1.
//
//	adjOff  = off × (1 − injury − fatigue + streak)
//	blended = adjOff × wOff + oppDef × wDef
//	pace    = mean(pace) × referee × fatigue pace
//	home    = blended × pace × altitude + revenge + home court
//	away    = blended × pace + revenge
func (e *Engine) Score(m Matchup) (home, away float64) {
	pace := (m.Home.Profile.Pace + m.Away.Profile.Pace) / 2 *
		m.Referee.Multiplier() *
		adjust.FatiguePace(m.Home.Adjust.Fatigued, m.Away.Adjust.Fatigued)

	// Explicit conversions keep the compiler from fusing multiply-adds, which
	// would move results across a rounding boundary on some platforms.
	home = float64(e.blended(m.Home, m.Away.Profile.DefRating)*pace*altitude(m.Home.Adjust)) +
		m.Home.Adjust.Revenge + e.params.HomeCourtBonus
	away = float64(e.blended(m.Away, m.Home.Profile.DefRating)*pace) + m.Away.Adjust.Revenge

	return Round1(home), Round1(away)
}

// Project runs the engine, splits both scores into quarters and derives the
// reported total, spread and home win probability from the quarter-level finals.
func (e *Engine) Project(m Matchup) Outcome {
	home, away := e.Score(m)
	d := e.decomposer.Decompose(home, away,
		m.Home.Profile.QuarterDistribution, m.Away.Profile.QuarterDistribution)

	diff := d.HomeFinal - d.AwayFinal
	return Outcome{
		EngineHome:         home,
		EngineAway:         away,
		Decomposition:      d,
		Total:              Round1(d.HomeFinal + d.AwayFinal),
		EngineTotal:        Round1(home + away),
		Spread:             Round1(-diff),
		HomeWinProbability: WinProbability(diff, e.params.WinProbScale),
	}
}

func (e *Engine) blended(s Side, oppDef float64) float64 {
	adjOff := s.Profile.OffRating * (1 - s.Injury - s.Adjust.Fatigue + s.Adjust.Streak.Bonus)
	return float64(adjOff*e.params.OffenseWeight) + float64(oppDef*e.params.DefenseWeight)
}

func altitude(b adjust.Bundle) float64 {
	if b.Altitude == 0 {
		return 1
	}
	return b.Altitude
}

// WinProbability maps a home margin to a home win probability with a
// base-10 logistic curve. A zero margin is exactly 0.5.
func WinProbability(diff, scale float64) float64 {
	return 1 / (1 + math.Pow(10, -diff/scale))
}

// Round1 rounds to one decimal place. The exact binary value is rounded, so
// 1.15 (stored just below) gives 1.1 and an exact tie such as 112.25 goes to
// the even digit.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', 1, 64)).InexactFloat64()
}
