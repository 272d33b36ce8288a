// Package engine turns a game situation into a play-calling recommendation.
//
// The engine is an ordered chain of named rule groups. Every group receives
// the immutable situation and the plan built so far and returns the updated
// plan. Later groups overwrite fields set by earlier ones, key points
// accumulate and are de-duplicated once at the end. Evaluation holds no
// state, so Generate is safe to call from any number of goroutines.
package engine

import (
	"fmt"
	"slices"

	"github.com/okian/dugout/internal/domain/model"
)

// Late innings start here for the high-leverage predicate.
const (
	lateInning       = 7
	closeScoreMargin = 2
)

// ApplyFunc evaluates one rule group. It reports whether the group changed
// the plan.
type ApplyFunc func(s model.GameSituation, p model.StrategyPlan) (model.StrategyPlan, bool)

// Rule is a named step of the chain. Names are stable and used as metric labels.
type Rule struct {
	Name  string
	Apply ApplyFunc
}

// Trace lists the names of the rules that fired, in evaluation order.
type Trace []string

// Fired reports whether the named rule is part of the trace.
func (t Trace) Fired(name string) bool { return slices.Contains(t, name) }

// Rule names.
const (
	RuleInitialize             = "initialize"
	RuleCountPitch             = "count-pitch"
	RuleRunnersFirstOrSecond   = "runners-first-or-second"
	RuleRunnerThirdDefense     = "runner-third-defense"
	RuleFirstAndThirdDefense   = "first-and-third-defense"
	RuleTwoOutTieFirstAndThird = "two-out-tie-first-and-third"
	RuleHighLeverage           = "high-leverage"
	RuleCountHitter            = "count-hitter"
	RuleRunnerThirdOffense     = "runner-third-offense"
	RuleRunnerFirstOnly        = "runner-first-only"
	RuleFirstAndThirdOffense   = "first-and-third-offense"
	RuleScoreHitter            = "score-hitter"
	RuleFinalize               = "finalize"
)

var chain = []Rule{ //nolint:gochecknoglobals // immutable rule table
	{RuleInitialize, initialize},
	{RuleCountPitch, countPitch},
	{RuleRunnersFirstOrSecond, runnersFirstOrSecond},
	{RuleRunnerThirdDefense, runnerThirdDefense},
	{RuleFirstAndThirdDefense, firstAndThirdDefense},
	{RuleTwoOutTieFirstAndThird, twoOutTieFirstAndThird},
	{RuleHighLeverage, highLeverage},
	{RuleCountHitter, countHitter},
	{RuleRunnerThirdOffense, runnerThirdOffense},
	{RuleRunnerFirstOnly, runnerFirstOnly},
	{RuleFirstAndThirdOffense, firstAndThirdOffense},
	{RuleScoreHitter, scoreHitter},
	{RuleFinalize, finalize},
}

// Rules returns the chain in evaluation order. The slice is a copy.
func Rules() []Rule {
	return slices.Clone(chain)
}

// HighLeverage reports late innings with a close score.
func HighLeverage(inning, scoreDifference int) bool {
	return inning >= lateInning && abs(scoreDifference) <= closeScoreMargin
}

// Generate returns the strategy plan for s.
func Generate(s model.GameSituation) model.StrategyPlan {
	p, _ := Evaluate(s)
	return p
}

// Evaluate returns the strategy plan for s together with the rules that fired.
func Evaluate(s model.GameSituation) (model.StrategyPlan, Trace) {
	var p model.StrategyPlan
	trace := make(Trace, 0, len(chain))
	for _, r := range chain {
		var fired bool
		p, fired = r.Apply(s, p)
		if fired {
			trace = append(trace, r.Name)
		}
	}
	return p, trace
}

// Summary is the situational key point every plan starts with.
func Summary(s model.GameSituation) string {
	return fmt.Sprintf("%s of the %d inning, count %d-%d with %d out(s).",
		s.HalfInning.Title(), s.Inning, s.Balls, s.Strikes, s.Outs)
}

// withPoint appends a key point without touching the backing array of p.
func withPoint(p model.StrategyPlan, point string) model.StrategyPlan {
	p.KeyPoints = append(slices.Clip(p.KeyPoints), point)
	return p
}

// dedupe keeps the first occurrence of every key point.
func dedupe(points []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(points))
	out := make([]string, 0, len(points))
	for _, kp := range points {
		if _, ok := seen[kp]; ok {
			continue
		}
		seen[kp] = struct{}{}
		out = append(out, kp)
	}
	return out, len(out) != len(points)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
