package engine

import "github.com/okian/dugout/internal/domain/model"

func initialize(s model.GameSituation, _ model.StrategyPlan) (model.StrategyPlan, bool) {
	return model.StrategyPlan{
		PitchCall:   DefaultPitchCall,
		CatcherPlan: DefaultCatcherPlan,
		DefensiveAlignment: model.DefensiveAlignment{
			Infield:  DefaultInfield,
			Outfield: DefaultOutfield,
			Battery:  DefaultBattery,
		},
		OffensiveSigns: model.OffensiveSigns{
			Hitter: DefaultHitterSign,
			Runner: DefaultRunnerSign,
		},
		KeyPoints: []string{Summary(s)},
	}, true
}

// countPitch picks the pitch from the count; first match wins.
func countPitch(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	switch {
	case s.Strikes >= 2 && s.Balls <= 1:
		p.PitchCall = PitchChaseSlider
		return withPoint(p, PointChasePitch), true
	case s.Balls == 3:
		p.PitchCall = PitchChallengeFastball
		return withPoint(p, PointAvoidFreePass), true
	case s.Balls >= 2 && s.Strikes == 0:
		p.PitchCall = PitchTwoSeamGroundBall
		return withPoint(p, PointNeedStrike), true
	}
	return p, false
}

func runnersFirstOrSecond(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if !s.RunnersOnFirst && !s.RunnersOnSecond {
		return p, false
	}
	p.DefensiveAlignment.Infield = InfieldDoublePlay
	p.CatcherPlan = CatcherMixLooks
	return withPoint(p, PointRunningGame), true
}

func runnerThirdDefense(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if !s.RunnersOnThird || s.Outs >= 2 {
		return p, false
	}
	p.DefensiveAlignment.Infield = InfieldCornersIn
	p.CatcherPlan = CatcherBlockEverything
	return withPoint(p, PointPreventRun), true
}

func firstAndThirdDefense(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if !s.FirstAndThird() {
		return p, false
	}
	p.DefensiveAlignment.Infield = InfieldCornersBack
	return withPoint(p, PointFirstAndThird), true
}

// twoOutTieFirstAndThird is the most specific defensive rule and runs after
// every other rule that touches the pitch call or the catcher plan.
func twoOutTieFirstAndThird(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if s.Outs != 2 || !s.FirstAndThird() || s.ScoreDifference != 0 {
		return p, false
	}
	p.PitchCall = PitchHighFastball
	p.CatcherPlan = CatcherThrowThrough
	return withPoint(p, PointSureOutAtSecond), true
}

func highLeverage(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if !HighLeverage(s.Inning, s.ScoreDifference) {
		return p, false
	}
	p.DefensiveAlignment.Outfield = OutfieldNoDoubles
	return withPoint(p, PointHighLeverage), true
}

func countHitter(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	switch {
	case s.Balls >= 3:
		p.OffensiveSigns.Hitter = HitterTake
	case s.Strikes == 2:
		p.OffensiveSigns.Hitter = HitterShortenUp
	default:
		return p, false
	}
	return p, true
}

func runnerThirdOffense(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if !s.RunnersOnThird || s.Outs >= 2 {
		return p, false
	}
	p.OffensiveSigns.Hitter = HitterContact
	p.OffensiveSigns.Runner = RunnerSqueezeRead
	return p, true
}

func runnerFirstOnly(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if !s.RunnersOnFirst || s.RunnersOnSecond || s.Outs >= 2 {
		return p, false
	}
	if s.Balls >= 2 && s.Strikes <= 1 {
		p.OffensiveSigns.Runner = RunnerGreenLight
		return withPoint(p, PointStealCount), true
	}
	p.OffensiveSigns.Runner = RunnerAggressiveLead
	return p, true
}

func firstAndThirdOffense(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if !s.FirstAndThird() {
		return p, false
	}
	p.OffensiveSigns.Runner = RunnerRundown
	return withPoint(p, PointDelaySteal), true
}

// scoreHitter adjusts the hitter only while the sign still reads as the
// default string. The comparison is by value, not by whether an earlier rule
// ran.
func scoreHitter(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	if p.OffensiveSigns.Hitter != DefaultHitterSign {
		return p, false
	}
	switch {
	case s.ScoreDifference < 0:
		p.OffensiveSigns.Hitter = HitterGapToGap
	case s.ScoreDifference > 0 && s.Outs < 2:
		p.OffensiveSigns.Hitter = HitterSelective
	default:
		return p, false
	}
	return p, true
}

func finalize(_ model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool) {
	var removed bool
	p.KeyPoints, removed = dedupe(p.KeyPoints)
	return p, removed
}
