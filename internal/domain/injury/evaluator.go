package injury

import (
	"strings"

	"github.com/okian/hoopline/internal/domain/model"
)

// DefaultInjuryCap bounds the summed penalty so a depleted roster cannot
// zero out a team's offense.
const DefaultInjuryCap = 0.30

// Evaluator aggregates a team's absentees into one capped penalty.
type Evaluator struct {
	classifier Classifier
	cap        float64
}

// NewEvaluator creates an Evaluator with the default cap.
func NewEvaluator(c Classifier, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{classifier: c, cap: DefaultInjuryCap}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cap returns the configured ceiling.
func (e *Evaluator) Cap() float64 { return e.cap }

// Evaluate classifies each name and returns the capped penalty and the
// per-player details in input order. Blank names are ignored.
func (e *Evaluator) Evaluate(names []string) (float64, []model.Absence) {
	details := make([]model.Absence, 0, len(names))
	var total float64
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		a := e.classifier.Classify(n)
		total += a.Penalty
		details = append(details, a)
	}
	return clamp(total, 0, e.cap), details
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
