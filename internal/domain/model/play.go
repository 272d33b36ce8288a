package model

import (
	"fmt"
	"time"
)

// Play is a persisted history record: the situation, what was called and,
// later, what actually happened.
type Play struct {
	ID string `json:"id"`

	GameSituation

	RecommendedPitch    string             `json:"recommendedPitch"`
	DefensiveAlignment  DefensiveAlignment `json:"defensiveAlignment"`
	CatcherInstructions string             `json:"catcherInstructions"`
	OffensiveSign       string             `json:"offensiveSign"`
	RunnerInstructions  string             `json:"runnerInstructions"`
	ActualOutcome       string             `json:"actualOutcome"`

	GeneratedFromEngine bool      `json:"generatedFromEngine"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// NewPlayFromPlan builds an engine-generated history record.
func NewPlayFromPlan(s GameSituation, p StrategyPlan) Play {
	return Play{
		GameSituation:       s,
		RecommendedPitch:    p.PitchCall,
		DefensiveAlignment:  p.DefensiveAlignment,
		CatcherInstructions: p.CatcherPlan,
		OffensiveSign:       p.OffensiveSigns.Hitter,
		RunnerInstructions:  p.OffensiveSigns.Runner,
		GeneratedFromEngine: true,
	}
}

// String renders a one-line summary, e.g.
// "Visitors vs Home | Top 7 | Outs: 2 | Bases: 1-3".
func (p Play) String() string {
	return fmt.Sprintf("%s vs %s | %s %d | Outs: %d | Bases: %s",
		p.OffenseTeam, p.DefenseTeam, p.HalfInning.Title(), p.Inning, p.Outs, p.BaseState())
}
