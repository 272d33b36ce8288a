package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dugout/internal/domain/model"
)

func TestDedupe(t *testing.T) {
	Convey("Given key points with repeats", t, func() {
		in := []string{"a", "b", "a", "c", "b"}

		Convey("When de-duplicating", func() {
			out, removed := dedupe(in)

			Convey("Then the first occurrence order should be kept", func() {
				So(out, ShouldResemble, []string{"a", "b", "c"})
				So(removed, ShouldBeTrue)
				So(in, ShouldHaveLength, 5)
			})
		})

		Convey("When the finalize rule sees them", func() {
			p, fired := finalize(model.GameSituation{}, model.StrategyPlan{KeyPoints: in})

			Convey("Then it should report that it changed the plan", func() {
				So(fired, ShouldBeTrue)
				So(p.KeyPoints, ShouldResemble, []string{"a", "b", "c"})
			})
		})
	})
}

func TestScoreHitterComparesByValue(t *testing.T) {
	Convey("Given a trailing offense", t, func() {
		s := model.GameSituation{ScoreDifference: -1}

		Convey("When an earlier rule left the hitter sign equal to the default text", func() {
			p := model.StrategyPlan{OffensiveSigns: model.OffensiveSigns{Hitter: DefaultHitterSign}}
			p, fired := scoreHitter(s, p)

			Convey("Then the score rule should still apply", func() {
				So(fired, ShouldBeTrue)
				So(p.OffensiveSigns.Hitter, ShouldEqual, HitterGapToGap)
			})
		})

		Convey("When the hitter sign differs from the default", func() {
			p := model.StrategyPlan{OffensiveSigns: model.OffensiveSigns{Hitter: HitterTake}}
			p, fired := scoreHitter(s, p)

			Convey("Then it should be left alone", func() {
				So(fired, ShouldBeFalse)
				So(p.OffensiveSigns.Hitter, ShouldEqual, HitterTake)
			})
		})
	})

	Convey("Given a leading offense with two outs", t, func() {
		s := model.GameSituation{ScoreDifference: 2, Outs: 2}
		p, fired := scoreHitter(s, model.StrategyPlan{OffensiveSigns: model.OffensiveSigns{Hitter: DefaultHitterSign}})

		Convey("Then the default hitter sign should stay", func() {
			So(fired, ShouldBeFalse)
			So(p.OffensiveSigns.Hitter, ShouldEqual, DefaultHitterSign)
		})
	})
}

func TestWithPointDoesNotAlias(t *testing.T) {
	Convey("Given a plan with spare capacity in its key points", t, func() {
		base := model.StrategyPlan{KeyPoints: make([]string, 1, 4)}
		base.KeyPoints[0] = "summary"

		Convey("When two branches append from it", func() {
			a := withPoint(base, "a")
			b := withPoint(base, "b")

			Convey("Then neither should see the other's point", func() {
				So(a.KeyPoints, ShouldResemble, []string{"summary", "a"})
				So(b.KeyPoints, ShouldResemble, []string{"summary", "b"})
			})
		})
	})
}
