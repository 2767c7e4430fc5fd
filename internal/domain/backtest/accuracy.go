// Package backtest scores reconciled predictions against what happened.
package backtest

import (
	"math"

	"github.com/okian/hoopline/internal/domain/model"
)

// Accuracy computes the report over reconciled records; the rest are skipped.
//
// A hit is a prediction on the same side of the posted line as the observed
// total. A prediction or observation exactly on the line is a push: it is not
// a hit but still counts toward the sample.
func Accuracy(records []model.PredictionRecord) model.AccuracyReport {
	var (
		rep      model.AccuracyReport
		errorSum float64
	)
	for _, r := range records {
		if r.ObservedTotal == nil {
			continue
		}
		observed := *r.ObservedTotal
		rep.SampleCount++
		errorSum += math.Abs(r.PredictedTotal - observed)

		predictedSide := sign(r.PredictedTotal - r.CasinoLine)
		observedSide := sign(observed - r.CasinoLine)
		switch {
		case predictedSide == 0 || observedSide == 0:
			rep.Pushes++
		case predictedSide == observedSide:
			rep.Hits++
		}
	}
	if rep.SampleCount == 0 {
		return rep
	}
	rep.MeanAbsoluteError = errorSum / float64(rep.SampleCount)
	rep.OverUnderHitRate = float64(rep.Hits) / float64(rep.SampleCount)
	return rep
}

// Call returns the over/under call of a projected total against a line.
// A total exactly on the line is called under.
func Call(total, line float64) string {
	if total > line {
		return model.CallOver
	}
	return model.CallUnder
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
