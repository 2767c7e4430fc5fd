package projection

// Params holds the model weights. Zero values are never valid; start from
// DefaultParams and override with options.
type Params struct {
	OffenseWeight    float64 // weight of a team's own adjusted offense
	DefenseWeight    float64 // weight of the opponent's defensive rating
	HomeCourtBonus   float64 // points added to the home side after multiplication
	BlowoutThreshold float64 // Q1..Q3 differential that must be exceeded

	// Fourth-quarter decay when a blowout triggers.
	HomeLeadHomeQ4 float64 // home leads, home rests starters
	HomeLeadAwayQ4 float64 // home leads, away pads stats
	AwayLeadAwayQ4 float64 // away leads, away rests starters
	AwayLeadHomeQ4 float64 // away leads, home gives up

	WinProbScale float64
}

// DefaultParams returns the calibrated model constants.
func DefaultParams() Params {
	return Params{
		OffenseWeight:    0.65,
		DefenseWeight:    0.35,
		HomeCourtBonus:   2.5,
		BlowoutThreshold: 16,
		HomeLeadHomeQ4:   0.82,
		HomeLeadAwayQ4:   0.92,
		AwayLeadAwayQ4:   0.85,
		AwayLeadHomeQ4:   0.90,
		WinProbScale:     14.5,
	}
}

// Option configures an Engine.
type Option func(*Params)

// WithHomeCourtBonus overrides the home-court points. Negative values are ignored.
func WithHomeCourtBonus(v float64) Option {
	return func(p *Params) {
		if v >= 0 {
			p.HomeCourtBonus = v
		}
	}
}

// WithBlowoutThreshold overrides the blowout differential. Non-positive values are ignored.
func WithBlowoutThreshold(v float64) Option {
	return func(p *Params) {
		if v > 0 {
			p.BlowoutThreshold = v
		}
	}
}

// WithWinProbScale overrides the logistic scale. Non-positive values are ignored.
func WithWinProbScale(v float64) Option {
	return func(p *Params) {
		if v > 0 {
			p.WinProbScale = v
		}
	}
}

// WithParams replaces every constant at once.
func WithParams(params Params) Option {
	return func(p *Params) { *p = params }
}
