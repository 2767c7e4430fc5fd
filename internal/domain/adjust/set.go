package adjust

// Input is the per-team situational data of one matchup.
type Input struct {
	PlayedYesterday bool
	Record          string // last-10 "W-L", may be empty
	Revenge         bool
}

// Bundle is the computed adjustment set for one team.
type Bundle struct {
	Fatigued bool
	Fatigue  float64 // subtracted from the offensive multiplier
	Streak   Streak  // Bonus added to the offensive multiplier
	Revenge  float64 // points added after multiplication
	Altitude float64 // scoring multiplier, 1 for the away side
}

// Set builds adjustment bundles with the configured constants.
type Set struct {
	revengePoints float64
}

// NewSet creates a Set with default constants.
func NewSet(opts ...Option) *Set {
	s := &Set{revengePoints: DefaultRevengePoints}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build computes the bundle for one side. Altitude only applies at home.
func (s *Set) Build(side Side, in Input, altitudeVenue bool) Bundle {
	b := Bundle{
		Fatigued: in.PlayedYesterday,
		Fatigue:  Fatigue(side, in.PlayedYesterday),
		Streak:   Inertia(in.Record),
		Revenge:  Revenge(in.Revenge, s.revengePoints),
		Altitude: 1,
	}
	if side == Home {
		b.Altitude = Altitude(altitudeVenue)
	}
	return b
}

// Option configures a Set.
type Option func(*Set)

// WithRevengePoints overrides the revenge bonus. Negative values are ignored.
func WithRevengePoints(p float64) Option {
	return func(s *Set) {
		if p >= 0 {
			s.revengePoints = p
		}
	}
}
