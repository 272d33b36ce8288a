package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/dugout/internal/domain/engine"
	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/internal/domain/validation"
)

// Output formats.
const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// planView is the printed form of a plan.
type planView struct {
	PitchCall          string        `json:"pitchCall" yaml:"pitchCall"`
	CatcherPlan        string        `json:"catcherPlan" yaml:"catcherPlan"`
	DefensiveAlignment alignmentView `json:"defensiveAlignment" yaml:"defensiveAlignment"`
	OffensiveSigns     signsView     `json:"offensiveSigns" yaml:"offensiveSigns"`
	KeyPoints          []string      `json:"keyPoints" yaml:"keyPoints"`
	Trace              []string      `json:"trace,omitempty" yaml:"trace,omitempty"`
}

type alignmentView struct {
	Infield  string `json:"infield" yaml:"infield"`
	Outfield string `json:"outfield" yaml:"outfield"`
	Battery  string `json:"battery" yaml:"battery"`
}

type signsView struct {
	Hitter string `json:"hitter" yaml:"hitter"`
	Runner string `json:"runner" yaml:"runner"`
}

func newPlanView(p model.StrategyPlan, trace engine.Trace) planView {
	return planView{
		PitchCall:   p.PitchCall,
		CatcherPlan: p.CatcherPlan,
		DefensiveAlignment: alignmentView{
			Infield:  p.DefensiveAlignment.Infield,
			Outfield: p.DefensiveAlignment.Outfield,
			Battery:  p.DefensiveAlignment.Battery,
		},
		OffensiveSigns: signsView{Hitter: p.OffensiveSigns.Hitter, Runner: p.OffensiveSigns.Runner},
		KeyPoints:      p.KeyPoints,
		Trace:          trace,
	}
}

type recommendFlags struct {
	offense, defense, half, notes string
	inning, outs, balls, strikes  int
	score                         int
	first, second, third          bool
	output                        string
	trace                         bool
}

func (f *recommendFlags) request() validation.Request {
	return validation.Request{
		OffenseTeam:     &f.offense,
		DefenseTeam:     &f.defense,
		Inning:          &f.inning,
		HalfInning:      &f.half,
		Outs:            &f.outs,
		Balls:           &f.balls,
		Strikes:         &f.strikes,
		RunnersOnFirst:  &f.first,
		RunnersOnSecond: &f.second,
		RunnersOnThird:  &f.third,
		ScoreDifference: &f.score,
		ContextNotes:    &f.notes,
	}
}

func newRecommendCmd() *cobra.Command {
	var f recommendFlags
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the plan for a game situation",
		Example: `  playbook recommend --inning 7 --outs 2 --balls 1 --strikes 1 --first --third
  playbook recommend --half bottom --balls 3 --strikes 2 --score -1 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.output != formatYAML && f.output != formatJSON {
				return fmt.Errorf("unknown output format %q: use %s or %s", f.output, formatYAML, formatJSON)
			}
			s, err := validation.Validate(f.request())
			if err != nil {
				return err
			}
			plan, trace := engine.Evaluate(s)
			if !f.trace {
				trace = nil
			}
			return printPlan(cmd.OutOrStdout(), f.output, newPlanView(plan, trace))
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.offense, "offense", "Visitors", "team at bat")
	fl.StringVar(&f.defense, "defense", "Home", "team in the field")
	fl.IntVar(&f.inning, "inning", 1, "inning, 1 or later")
	fl.StringVar(&f.half, "half", string(model.Top), "half inning: top or bottom")
	fl.IntVar(&f.outs, "outs", 0, "outs, 0-2")
	fl.IntVar(&f.balls, "balls", 0, "balls, 0-3")
	fl.IntVar(&f.strikes, "strikes", 0, "strikes, 0-2")
	fl.BoolVar(&f.first, "first", false, "runner on first")
	fl.BoolVar(&f.second, "second", false, "runner on second")
	fl.BoolVar(&f.third, "third", false, "runner on third")
	fl.IntVar(&f.score, "score", 0, "offense runs minus defense runs")
	fl.StringVar(&f.notes, "notes", "", "free-form context")
	fl.StringVarP(&f.output, "output", "o", formatYAML, "output format: yaml or json")
	fl.BoolVar(&f.trace, "trace", false, "include the rules that fired")
	return cmd
}

func printPlan(w io.Writer, format string, v planView) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
