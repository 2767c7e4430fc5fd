// Package adjust computes the situational modifiers applied on top of base
// team ratings: fatigue, streak inertia, referee tendency, revenge and
// altitude. Every function is pure.
package adjust

import (
	"fmt"
	"strconv"
	"strings"
)

// Model constants.
const (
	HomeFatiguePenalty   = 0.035
	AwayFatiguePenalty   = 0.045
	FatiguePaceFactor    = 0.98
	AltitudeMultiplier   = 1.025
	DefaultRevengePoints = 3.0
)

// Side selects home or away.
type Side int

// Sides.
const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	if s == Away {
		return "away"
	}
	return "home"
}

// Fatigue returns the offensive penalty for a team that played the previous day.
func Fatigue(side Side, playedYesterday bool) float64 {
	if !playedYesterday {
		return 0
	}
	if side == Away {
		return AwayFatiguePenalty
	}
	return HomeFatiguePenalty
}

// FatiguePace scales the shared pace when either team is on a back-to-back.
func FatiguePace(homeFatigued, awayFatigued bool) float64 {
	if homeFatigued || awayFatigued {
		return FatiguePaceFactor
	}
	return 1
}

// Streak is the inertia adjustment derived from a last-10 record.
type Streak struct {
	Bonus float64 `json:"bonus"`
	Label string  `json:"label"`
}

// Streak labels.
const (
	LabelOnFire   = "On Fire"
	LabelPositive = "Positive"
	LabelNeutral  = "Neutral"
	LabelNegative = "Negative"
	LabelFrozen   = "Frozen"
)

// ParseWins reads the wins from a last-10 record such as "8-2". Only the
// leading field counts, so "8-2-0" and a bare "8" both give 8.
func ParseWins(record string) (int, error) {
	w, _, _ := strings.Cut(record, "-")
	wins, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || wins < 0 {
		return 0, fmt.Errorf("%w: wins in record %q", ErrMalformedInput, record)
	}
	return wins, nil
}

// Inertia maps a last-10 record to a streak bonus. Missing or malformed
// records are neutral.
func Inertia(record string) Streak {
	wins, err := ParseWins(record)
	if err != nil {
		return Streak{Label: LabelNeutral}
	}
	switch {
	case wins >= 8:
		return Streak{Bonus: 0.035, Label: LabelOnFire}
	case wins >= 6:
		return Streak{Bonus: 0.02, Label: LabelPositive}
	case wins <= 2:
		return Streak{Bonus: -0.035, Label: LabelFrozen}
	case wins <= 4:
		return Streak{Bonus: -0.015, Label: LabelNegative}
	default:
		return Streak{Label: LabelNeutral}
	}
}

// Revenge returns the post-multiplication point bonus for a motivated team.
func Revenge(motivated bool, points float64) float64 {
	if motivated {
		return points
	}
	return 0
}

// Altitude returns the scoring multiplier for a home team at altitude.
func Altitude(altitudeVenue bool) float64 {
	if altitudeVenue {
		return AltitudeMultiplier
	}
	return 1
}
