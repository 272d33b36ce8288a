// Package types contains the wire types shared by the HTTP API and its clients.
package types

import (
	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/internal/domain/validation"
)

// RecommendationResponse is the body of a successful POST /recommendations.
type RecommendationResponse struct {
	model.StrategyPlan
	HistoryID string `json:"historyId,omitempty"`
}

// PlayList is one page of history records.
type PlayList struct {
	Items  []model.Play `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// PlayInput is the body of POST, PUT and PATCH on /plays. The situation
// fields go through validation; the rest is free text.
type PlayInput struct {
	validation.Request

	RecommendedPitch    *string                   `json:"recommendedPitch,omitempty"`
	DefensiveAlignment  *model.DefensiveAlignment `json:"defensiveAlignment,omitempty"`
	CatcherInstructions *string                   `json:"catcherInstructions,omitempty"`
	OffensiveSign       *string                   `json:"offensiveSign,omitempty"`
	RunnerInstructions  *string                   `json:"runnerInstructions,omitempty"`
	ActualOutcome       *string                   `json:"actualOutcome,omitempty"`
}

// Build validates the situation and returns a record carrying the free-text
// fields. Missing free-text fields are left empty.
func (in PlayInput) Build() (model.Play, error) {
	s, err := validation.Validate(in.Request)
	if err != nil {
		return model.Play{}, err
	}
	p := model.Play{
		GameSituation:       s,
		RecommendedPitch:    deref(in.RecommendedPitch),
		CatcherInstructions: deref(in.CatcherInstructions),
		OffensiveSign:       deref(in.OffensiveSign),
		RunnerInstructions:  deref(in.RunnerInstructions),
		ActualOutcome:       deref(in.ActualOutcome),
	}
	if in.DefensiveAlignment != nil {
		p.DefensiveAlignment = *in.DefensiveAlignment
	}
	return p, nil
}

// Merge fills every field missing from in with the value stored on base.
func (in PlayInput) Merge(base model.Play) PlayInput {
	b := FromPlay(base)
	r := &in.Request
	pick(&r.OffenseTeam, b.OffenseTeam)
	pick(&r.DefenseTeam, b.DefenseTeam)
	pick(&r.Inning, b.Inning)
	pick(&r.HalfInning, b.HalfInning)
	pick(&r.Outs, b.Outs)
	pick(&r.Balls, b.Balls)
	pick(&r.Strikes, b.Strikes)
	pick(&r.RunnersOnFirst, b.RunnersOnFirst)
	pick(&r.RunnersOnSecond, b.RunnersOnSecond)
	pick(&r.RunnersOnThird, b.RunnersOnThird)
	pick(&r.ScoreDifference, b.ScoreDifference)
	pick(&r.ContextNotes, b.ContextNotes)
	pick(&in.RecommendedPitch, b.RecommendedPitch)
	pick(&in.DefensiveAlignment, b.DefensiveAlignment)
	pick(&in.CatcherInstructions, b.CatcherInstructions)
	pick(&in.OffensiveSign, b.OffensiveSign)
	pick(&in.RunnerInstructions, b.RunnerInstructions)
	pick(&in.ActualOutcome, b.ActualOutcome)
	return in
}

// FromPlay returns an input with every field of p set.
func FromPlay(p model.Play) PlayInput {
	a := p.DefensiveAlignment
	return PlayInput{
		Request:             validation.FromSituation(p.GameSituation),
		RecommendedPitch:    &p.RecommendedPitch,
		DefensiveAlignment:  &a,
		CatcherInstructions: &p.CatcherInstructions,
		OffensiveSign:       &p.OffensiveSign,
		RunnerInstructions:  &p.RunnerInstructions,
		ActualOutcome:       &p.ActualOutcome,
	}
}

func pick[T any](dst **T, fallback *T) {
	if *dst == nil {
		*dst = fallback
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
