package projection_test

import (
	"math"
	"testing"

	"github.com/okian/hoopline/internal/domain/adjust"
	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/internal/domain/projection"
	. "github.com/smartystreets/goconvey/convey"
)

func side(off, def, pace float64) projection.Side {
	return projection.Side{
		Profile: model.TeamStatProfile{OffRating: off, DefRating: def, Pace: pace, QuarterDistribution: model.EvenQuarters()},
		Adjust:  adjust.Bundle{Altitude: 1},
	}
}

func TestEngineBaseline(t *testing.T) {
	Convey("Given a neutral matchup between a 118/112 home side and a 112/115 away side", t, func() {
		e := projection.NewEngine()
		m := projection.Matchup{Home: side(118, 112, 1.0), Away: side(112, 115, 1.0)}

		Convey("When scoring at engine level", func() {
			home, away := e.Score(m)

			Convey("Then the pair matches the regression baseline", func() {
				So(home, ShouldEqual, 119.5)
				So(away, ShouldEqual, 112.0)
			})
		})

		Convey("When running the full projection", func() {
			out := e.Project(m)

			Convey("Then the reported figures follow from the quarter finals", func() {
				So(out.Decomposition.Blowout, ShouldBeFalse)
				So(out.Decomposition.HomeFinal, ShouldAlmostEqual, 119.5, 1e-9)
				So(out.Decomposition.AwayFinal, ShouldAlmostEqual, 112.0, 1e-9)
				So(out.Total, ShouldEqual, 231.5)
				So(out.EngineTotal, ShouldEqual, 231.5)
				So(out.Spread, ShouldEqual, -7.5)
				So(out.HomeWinProbability, ShouldAlmostEqual, 0.7669, 1e-4)
			})
		})

		Convey("When it is computed twice", func() {
			So(e.Project(m), ShouldResemble, e.Project(m))
		})
	})
}

func TestEngineAdjustments(t *testing.T) {
	Convey("Given the baseline matchup", t, func() {
		e := projection.NewEngine()
		base := projection.Matchup{Home: side(118, 112, 1.0), Away: side(112, 115, 1.0)}
		baseHome, baseAway := e.Score(base)

		Convey("When the home side loses its stars", func() {
			m := base
			m.Home.Injury = 0.30
			home, away := e.Score(m)
			So(home, ShouldBeLessThan, baseHome)
			So(away, ShouldEqual, baseAway)
		})

		Convey("When the away side played yesterday", func() {
			m := base
			m.Away.Adjust.Fatigued = true
			m.Away.Adjust.Fatigue = adjust.AwayFatiguePenalty
			home, away := e.Score(m)
			So(away, ShouldBeLessThan, baseAway)
			// shared pace drops too
			So(home, ShouldBeLessThan, baseHome)
		})

		Convey("When referees lean over", func() {
			m := base
			m.Referee = adjust.RefereeOverBias
			home, away := e.Score(m)
			So(home, ShouldBeGreaterThan, baseHome)
			So(away, ShouldBeGreaterThan, baseAway)
		})

		Convey("When the home side plays at altitude", func() {
			m := base
			m.Home.Adjust.Altitude = adjust.AltitudeMultiplier
			home, away := e.Score(m)
			So(home, ShouldEqual, projection.Round1(116.95*1.025+2.5))
			So(away, ShouldEqual, baseAway)
		})

		Convey("When the away side seeks revenge", func() {
			m := base
			m.Away.Adjust.Revenge = 3
			_, away := e.Score(m)
			So(away, ShouldEqual, 115.0)
		})

		Convey("When a hot streak raises the multiplier", func() {
			m := base
			m.Away.Adjust.Streak = adjust.Inertia("9-1")
			_, away := e.Score(m)
			So(away, ShouldEqual, projection.Round1(112*1.035*0.65+112*0.35))
		})

		Convey("When home court is disabled", func() {
			home, _ := projection.NewEngine(projection.WithHomeCourtBonus(0)).Score(base)
			So(home, ShouldEqual, 117.0)
		})
	})
}

func TestDecomposer(t *testing.T) {
	Convey("Given the default decomposer", t, func() {
		d := projection.NewDecomposer()
		even := model.EvenQuarters()

		Convey("When no blowout triggers", func() {
			dna := [4]float64{0.27, 0.26, 0.24, 0.23}
			for _, s := range []float64{98.3, 110, 121.7, 133.1} {
				out := d.Decompose(s, s-3, dna, even)
				So(out.Blowout, ShouldBeFalse)
				So(out.HomeFinal, ShouldAlmostEqual, s, 1e-9)
				So(out.AwayFinal, ShouldAlmostEqual, s-3, 1e-9)
			}
		})

		Convey("When the home side leads big after three quarters", func() {
			out := d.Decompose(140, 100, even, even)
			So(out.Blowout, ShouldBeTrue)
			So(out.Message, ShouldEqual, projection.BlowoutMessage)
			So(out.Home[3], ShouldAlmostEqual, 35*0.82, 1e-9)
			So(out.Away[3], ShouldAlmostEqual, 25*0.92, 1e-9)
			So(out.HomeFinal, ShouldAlmostEqual, 133.7, 1e-9)
			So(out.AwayFinal, ShouldAlmostEqual, 98.0, 1e-9)
		})

		Convey("When the away side leads big after three quarters", func() {
			out := d.Decompose(100, 140, even, even)
			So(out.Blowout, ShouldBeTrue)
			So(out.AwayFinal, ShouldAlmostEqual, 134.75, 1e-9)
			So(out.HomeFinal, ShouldAlmostEqual, 97.5, 1e-9)
		})

		Convey("When the three-quarter differential sits on the boundary", func() {
			front := [4]float64{0.5, 0.25, 0.25, 0}

			So(d.Decompose(117, 100, front, front).Blowout, ShouldBeTrue)
			So(d.Decompose(116, 100, front, front).Blowout, ShouldBeFalse)
			So(d.Decompose(100, 117, front, front).Blowout, ShouldBeTrue)
			So(d.Decompose(100, 116, front, front).Blowout, ShouldBeFalse)
		})

		Convey("When the threshold is configured", func() {
			d := projection.NewDecomposer(projection.WithBlowoutThreshold(40))
			So(d.Decompose(140, 100, even, even).Blowout, ShouldBeFalse)
		})
	})
}

func TestBlowoutDivergence(t *testing.T) {
	Convey("Given a lopsided matchup", t, func() {
		out := projection.NewEngine().Project(projection.Matchup{Home: side(140, 100, 1.0), Away: side(95, 125, 1.0)})

		Convey("Then the reported total comes from the decayed quarters", func() {
			So(out.Decomposition.Blowout, ShouldBeTrue)
			So(out.Total, ShouldBeLessThan, out.EngineTotal)
			So(out.Total, ShouldEqual, projection.Round1(out.Decomposition.HomeFinal+out.Decomposition.AwayFinal))
		})
	})
}

func TestWinProbability(t *testing.T) {
	Convey("Given point differentials", t, func() {
		So(projection.WinProbability(0, 14.5), ShouldEqual, 0.5)

		prev := 0.0
		for diff := -60.0; diff <= 60; diff += 0.5 {
			p := projection.WinProbability(diff, 14.5)
			So(p, ShouldBeGreaterThanOrEqualTo, prev)
			So(p, ShouldBeGreaterThan, 0)
			So(p, ShouldBeLessThan, 1)
			prev = p
		}

		Convey("Then it is symmetric around zero", func() {
			So(projection.WinProbability(7, 14.5)+projection.WinProbability(-7, 14.5), ShouldAlmostEqual, 1, 1e-12)
		})
	})
}

func TestRound1(t *testing.T) {
	Convey("Given values on a half step", t, func() {
		So(projection.Round1(119.45), ShouldEqual, 119.5)
		So(projection.Round1(-7.45), ShouldEqual, -7.5)
		So(projection.Round1(112.04), ShouldEqual, 112.0)
		So(projection.Round1(0), ShouldEqual, 0)
	})

	Convey("Given values whose binary form sits off the half step", t, func() {
		cases := map[float64]float64{
			1.15:   1.1,
			118.35: 118.3,
			2.25:   2.2,
			112.25: 112.2,
			-2.25:  -2.2,
			0.35:   0.3,
		}
		for in, want := range cases {
			So(projection.Round1(in), ShouldEqual, want)
		}
	})

	Convey("Given non-finite values", t, func() {
		So(math.IsNaN(projection.Round1(math.NaN())), ShouldBeTrue)
		So(math.IsInf(projection.Round1(math.Inf(1)), 1), ShouldBeTrue)
	})
}
