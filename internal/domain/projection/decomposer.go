package projection

import "math"

// BlowoutMessage explains the fourth-quarter decay.
const BlowoutMessage = "Blowout alert: starters expected to rest in Q4, fourth-quarter scoring reduced"

// Decomposition is the quarter split of both teams.
type Decomposition struct {
	Home      [4]float64
	Away      [4]float64
	HomeFinal float64
	AwayFinal float64
	Blowout   bool
	Message   string
}

// Decomposer splits final scores into quarters and applies garbage-time decay.
type Decomposer struct {
	params Params
}

// NewDecomposer creates a Decomposer with default parameters.
func NewDecomposer(opts ...Option) *Decomposer {
	p := DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &Decomposer{params: p}
}

// Decompose multiplies each final by its distribution. When the Q1..Q3
// differential strictly exceeds the threshold, both fourth quarters decay,
// the leader's more than the trailer's. Finals are the sum of the quarters.
func (d *Decomposer) Decompose(homeFinal, awayFinal float64, homeDNA, awayDNA [4]float64) Decomposition {
	var out Decomposition
	for i := range 4 {
		out.Home[i] = homeFinal * homeDNA[i]
		out.Away[i] = awayFinal * awayDNA[i]
	}

	diff := (out.Home[0] + out.Home[1] + out.Home[2]) - (out.Away[0] + out.Away[1] + out.Away[2])
	if math.Abs(diff) > d.params.BlowoutThreshold {
		out.Blowout = true
		out.Message = BlowoutMessage
		if diff > 0 {
			out.Home[3] *= d.params.HomeLeadHomeQ4
			out.Away[3] *= d.params.HomeLeadAwayQ4
		} else {
			out.Away[3] *= d.params.AwayLeadAwayQ4
			out.Home[3] *= d.params.AwayLeadHomeQ4
		}
	}

	for i := range 4 {
		out.HomeFinal += out.Home[i]
		out.AwayFinal += out.Away[i]
	}
	return out
}
