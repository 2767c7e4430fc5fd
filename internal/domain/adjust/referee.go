package adjust

import (
	"fmt"
	"strings"
)

// RefereeTrend is the crew's scoring tendency.
type RefereeTrend int

// Referee trends.
const (
	RefereeNeutral RefereeTrend = iota
	RefereeOverBias
	RefereeUnderBias
)

// Multiplier applied to the shared pace.
func (r RefereeTrend) Multiplier() float64 {
	switch r {
	case RefereeOverBias:
		return 1.035
	case RefereeUnderBias:
		return 0.965
	default:
		return 1
	}
}

func (r RefereeTrend) String() string {
	switch r {
	case RefereeOverBias:
		return "over"
	case RefereeUnderBias:
		return "under"
	default:
		return "neutral"
	}
}

// ParseRefereeTrend accepts "neutral", "over", "under" and the longer forms
// ("over_bias", "Over Bias"). Empty input is neutral.
func ParseRefereeTrend(s string) (RefereeTrend, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "" || v == "neutral":
		return RefereeNeutral, nil
	case strings.HasPrefix(v, "over"):
		return RefereeOverBias, nil
	case strings.HasPrefix(v, "under"):
		return RefereeUnderBias, nil
	default:
		return RefereeNeutral, fmt.Errorf("%w: referee trend %q", ErrMalformedInput, s)
	}
}
