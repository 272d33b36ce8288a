package engine_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dugout/internal/domain/engine"
	"github.com/okian/dugout/internal/domain/model"
)

func defaults(s model.GameSituation) model.StrategyPlan {
	return model.StrategyPlan{
		PitchCall:   engine.DefaultPitchCall,
		CatcherPlan: engine.DefaultCatcherPlan,
		DefensiveAlignment: model.DefensiveAlignment{
			Infield:  engine.DefaultInfield,
			Outfield: engine.DefaultOutfield,
			Battery:  engine.DefaultBattery,
		},
		OffensiveSigns: model.OffensiveSigns{
			Hitter: engine.DefaultHitterSign,
			Runner: engine.DefaultRunnerSign,
		},
		KeyPoints: []string{engine.Summary(s)},
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a two-out tie game with runners on first and third in the seventh", t, func() {
		s := model.GameSituation{
			OffenseTeam: "Visitors", DefenseTeam: "Home",
			Inning: 7, HalfInning: model.Top, Outs: 2, Balls: 1, Strikes: 1,
			RunnersOnFirst: true, RunnersOnThird: true,
		}

		Convey("When generating a plan", func() {
			plan, trace := engine.Evaluate(s)

			Convey("Then the battery should go up with the fastball and throw through", func() {
				So(plan.PitchCall, ShouldEqual, engine.PitchHighFastball)
				So(plan.CatcherPlan, ShouldEqual, engine.CatcherThrowThrough)
				So(plan.DefensiveAlignment.Infield, ShouldEqual, engine.InfieldCornersBack)
				So(plan.DefensiveAlignment.Outfield, ShouldEqual, engine.OutfieldNoDoubles)
				So(plan.OffensiveSigns.Runner, ShouldEqual, engine.RunnerRundown)
				So(plan.OffensiveSigns.Hitter, ShouldEqual, engine.DefaultHitterSign)
			})

			Convey("Then the key points should follow rule order", func() {
				want := []string{
					"Top of the 7 inning, count 1-1 with 2 out(s).",
					engine.PointRunningGame,
					engine.PointFirstAndThird,
					engine.PointSureOutAtSecond,
					engine.PointHighLeverage,
					engine.PointDelaySteal,
				}
				So(cmp.Diff(want, plan.KeyPoints), ShouldBeEmpty)
			})

			Convey("Then the trace should name the rules that fired", func() {
				want := engine.Trace{
					engine.RuleInitialize,
					engine.RuleRunnersFirstOrSecond,
					engine.RuleFirstAndThirdDefense,
					engine.RuleTwoOutTieFirstAndThird,
					engine.RuleHighLeverage,
					engine.RuleFirstAndThirdOffense,
				}
				So(cmp.Diff(want, trace), ShouldBeEmpty)
				So(trace.Fired(engine.RuleFinalize), ShouldBeFalse)
			})
		})
	})

	Convey("Given a full count with nobody on and the offense trailing", t, func() {
		s := model.GameSituation{
			Inning: 5, HalfInning: model.Bottom, Outs: 1, Balls: 3, Strikes: 2, ScoreDifference: -1,
		}

		Convey("When generating a plan", func() {
			plan := engine.Generate(s)

			Convey("Then the pitcher should challenge and the hitter should take", func() {
				So(plan.PitchCall, ShouldEqual, engine.PitchChallengeFastball)
				So(plan.OffensiveSigns.Hitter, ShouldEqual, engine.HitterTake)
				So(plan.KeyPoints, ShouldResemble, []string{
					"Bottom of the 5 inning, count 3-2 with 1 out(s).",
					engine.PointAvoidFreePass,
				})
			})
		})
	})

	Convey("Given the first pitch of the game", t, func() {
		s := model.GameSituation{Inning: 1, HalfInning: model.Top}

		Convey("When generating a plan", func() {
			plan, trace := engine.Evaluate(s)

			Convey("Then every field should keep its default", func() {
				So(cmp.Diff(defaults(s), plan), ShouldBeEmpty)
				So(plan.KeyPoints, ShouldHaveLength, 1)
				So(trace, ShouldResemble, engine.Trace{engine.RuleInitialize})
			})
		})
	})

	Convey("Given a runner on third with one out", t, func() {
		s := model.GameSituation{Inning: 3, HalfInning: model.Top, Outs: 1, RunnersOnThird: true}

		Convey("When generating a plan", func() {
			plan, trace := engine.Evaluate(s)

			Convey("Then both sides should react to the runner on third", func() {
				So(plan.DefensiveAlignment.Infield, ShouldEqual, engine.InfieldCornersIn)
				So(plan.CatcherPlan, ShouldEqual, engine.CatcherBlockEverything)
				So(plan.OffensiveSigns.Hitter, ShouldEqual, engine.HitterContact)
				So(plan.OffensiveSigns.Runner, ShouldEqual, engine.RunnerSqueezeRead)
				So(trace.Fired(engine.RuleRunnerThirdDefense), ShouldBeTrue)
				So(trace.Fired(engine.RuleRunnerThirdOffense), ShouldBeTrue)
				So(trace.Fired(engine.RuleScoreHitter), ShouldBeFalse)
			})
		})
	})

	Convey("Given a runner on first only in a hitter's count", t, func() {
		s := model.GameSituation{
			Inning: 4, HalfInning: model.Bottom, Balls: 2, Strikes: 1, RunnersOnFirst: true, ScoreDifference: 3,
		}

		Convey("When generating a plan", func() {
			plan := engine.Generate(s)

			Convey("Then the runner should get the green light", func() {
				So(plan.OffensiveSigns.Runner, ShouldEqual, engine.RunnerGreenLight)
				So(plan.KeyPoints, ShouldContain, engine.PointStealCount)
				So(plan.DefensiveAlignment.Infield, ShouldEqual, engine.InfieldDoublePlay)
			})

			Convey("Then a leading offense should stay selective", func() {
				So(plan.OffensiveSigns.Hitter, ShouldEqual, engine.HitterSelective)
			})
		})

		Convey("When the count turns against the hitter", func() {
			s.Balls, s.Strikes = 0, 2
			plan := engine.Generate(s)

			Convey("Then the runner should only take an aggressive lead", func() {
				So(plan.OffensiveSigns.Runner, ShouldEqual, engine.RunnerAggressiveLead)
				So(plan.OffensiveSigns.Hitter, ShouldEqual, engine.HitterShortenUp)
				So(plan.PitchCall, ShouldEqual, engine.PitchChaseSlider)
				So(plan.KeyPoints, ShouldNotContain, engine.PointStealCount)
			})
		})
	})

	Convey("Given a 2-0 count with the offense trailing", t, func() {
		s := model.GameSituation{Inning: 2, HalfInning: model.Top, Balls: 2, ScoreDifference: -4}

		Convey("Then the pitcher should look for a ground ball and the hitter should drive it", func() {
			plan := engine.Generate(s)
			So(plan.PitchCall, ShouldEqual, engine.PitchTwoSeamGroundBall)
			So(plan.KeyPoints, ShouldContain, engine.PointNeedStrike)
			So(plan.OffensiveSigns.Hitter, ShouldEqual, engine.HitterGapToGap)
		})
	})
}

func TestHighLeverage(t *testing.T) {
	Convey("Given inning and score combinations", t, func() {
		So(engine.HighLeverage(7, 0), ShouldBeTrue)
		So(engine.HighLeverage(9, -2), ShouldBeTrue)
		So(engine.HighLeverage(12, 2), ShouldBeTrue)
		So(engine.HighLeverage(6, 0), ShouldBeFalse)
		So(engine.HighLeverage(8, 3), ShouldBeFalse)
		So(engine.HighLeverage(8, -3), ShouldBeFalse)
	})
}

func TestRules(t *testing.T) {
	Convey("Given the rule chain", t, func() {
		rules := engine.Rules()

		Convey("Then it should run in a fixed order", func() {
			names := make([]string, 0, len(rules))
			for _, r := range rules {
				names = append(names, r.Name)
			}
			So(names, ShouldResemble, []string{
				"initialize", "count-pitch", "runners-first-or-second", "runner-third-defense",
				"first-and-third-defense", "two-out-tie-first-and-third", "high-leverage",
				"count-hitter", "runner-third-offense", "runner-first-only",
				"first-and-third-offense", "score-hitter", "finalize",
			})
		})

		Convey("When the returned slice is modified", func() {
			rules[0].Name = "changed"

			Convey("Then the engine's own chain should be untouched", func() {
				So(engine.Rules()[0].Name, ShouldEqual, engine.RuleInitialize)
			})
		})
	})
}

func TestGenerateIsPure(t *testing.T) {
	Convey("Given a busy situation", t, func() {
		s := model.GameSituation{
			Inning: 8, HalfInning: model.Bottom, Outs: 0, Balls: 2, Strikes: 0,
			RunnersOnFirst: true, RunnersOnThird: true, ScoreDifference: 1,
		}
		first := engine.Generate(s)

		Convey("When a caller mutates the returned plan", func() {
			first.KeyPoints[0] = "tampered"
			first.KeyPoints = append(first.KeyPoints, "extra")
			second := engine.Generate(s)

			Convey("Then later calls should not observe it", func() {
				So(second.KeyPoints[0], ShouldEqual, engine.Summary(s))
				So(second.KeyPoints, ShouldNotContain, "extra")
			})
		})

		Convey("When generating from many goroutines", func() {
			want := engine.Generate(s)
			const n = 64
			got := make([]model.StrategyPlan, n)
			var wg sync.WaitGroup
			for i := range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					got[i] = engine.Generate(s)
				}()
			}
			wg.Wait()

			Convey("Then every plan should be identical", func() {
				for i := range n {
					So(cmp.Diff(want, got[i]), ShouldBeEmpty)
				}
			})
		})
	})
}

func TestKeyPointsAreUnique(t *testing.T) {
	Convey("Given every valid situation", t, func() {
		var dupes int
		for inning := 1; inning <= 9; inning += 4 {
			for outs := 0; outs <= 2; outs++ {
				for balls := 0; balls <= 3; balls++ {
					for strikes := 0; strikes <= 2; strikes++ {
						for bases := 0; bases < 8; bases++ {
							for _, diff := range []int{-3, -1, 0, 2, 5} {
								s := model.GameSituation{
									Inning: inning, HalfInning: model.Top,
									Outs: outs, Balls: balls, Strikes: strikes,
									RunnersOnFirst:  bases&1 != 0,
									RunnersOnSecond: bases&2 != 0,
									RunnersOnThird:  bases&4 != 0,
									ScoreDifference: diff,
								}
								plan := engine.Generate(s)
								seen := map[string]bool{}
								for _, kp := range plan.KeyPoints {
									if seen[kp] {
										dupes++
									}
									seen[kp] = true
								}
								if plan.KeyPoints[0] != engine.Summary(s) {
									dupes++
								}
							}
						}
					}
				}
			}
		}

		Convey("Then no plan should repeat a key point and all should start with the summary", func() {
			So(dupes, ShouldEqual, 0)
		})
	})
}
