// Package validation turns untrusted request payloads into game situations.
package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/okian/dugout/internal/domain/model"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid game situation")

// Limits for situation fields.
const (
	MaxTeamNameLength = 128
	MinInning         = 1
	MaxOuts           = 2
	MaxBalls          = 3
	MaxStrikes        = 2
)

// Request is the wire shape of a situation. Pointer fields let the
// validator tell a missing value from a zero value.
type Request struct {
	OffenseTeam     *string `json:"offenseTeam"`
	DefenseTeam     *string `json:"defenseTeam"`
	Inning          *int    `json:"inning"`
	HalfInning      *string `json:"halfInning"`
	Outs            *int    `json:"outs"`
	Balls           *int    `json:"balls"`
	Strikes         *int    `json:"strikes"`
	RunnersOnFirst  *bool   `json:"runnersOnFirst,omitempty"`
	RunnersOnSecond *bool   `json:"runnersOnSecond,omitempty"`
	RunnersOnThird  *bool   `json:"runnersOnThird,omitempty"`
	ScoreDifference *int    `json:"scoreDifference"`
	ContextNotes    *string `json:"contextNotes,omitempty"`
	SaveToHistory   bool    `json:"saveToHistory,omitempty"`
}

// FromSituation builds a fully populated request, mostly for clients and tests.
func FromSituation(s model.GameSituation) Request {
	half := string(s.HalfInning)
	return Request{
		OffenseTeam:     &s.OffenseTeam,
		DefenseTeam:     &s.DefenseTeam,
		Inning:          &s.Inning,
		HalfInning:      &half,
		Outs:            &s.Outs,
		Balls:           &s.Balls,
		Strikes:         &s.Strikes,
		RunnersOnFirst:  &s.RunnersOnFirst,
		RunnersOnSecond: &s.RunnersOnSecond,
		RunnersOnThird:  &s.RunnersOnThird,
		ScoreDifference: &s.ScoreDifference,
		ContextNotes:    &s.ContextNotes,
	}
}

// FieldErrors maps a JSON field name to its problems.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) { fe[field] = append(fe[field], msg) }

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for k := range fe {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range fe.Fields() {
		parts = append(parts, f+": "+strings.Join(fe[f], ", "))
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalid) hold for field errors.
func (fe FieldErrors) Is(target error) bool { return target == ErrInvalid }

// Validate checks every field and reports all problems at once.
func Validate(r Request) (model.GameSituation, error) {
	var s model.GameSituation
	fe := FieldErrors{}

	s.OffenseTeam = team(fe, "offenseTeam", r.OffenseTeam)
	s.DefenseTeam = team(fe, "defenseTeam", r.DefenseTeam)

	if r.Inning == nil {
		fe.add("inning", "is required")
	} else if *r.Inning < MinInning {
		fe.add("inning", fmt.Sprintf("must be at least %d", MinInning))
	} else {
		s.Inning = *r.Inning
	}

	if r.HalfInning == nil || strings.TrimSpace(*r.HalfInning) == "" {
		fe.add("halfInning", "is required")
	} else if h, err := model.ParseHalfInning(*r.HalfInning); err != nil {
		fe.add("halfInning", `must be "top" or "bottom"`)
	} else {
		s.HalfInning = h
	}

	s.Outs = bounded(fe, "outs", r.Outs, MaxOuts)
	s.Balls = bounded(fe, "balls", r.Balls, MaxBalls)
	s.Strikes = bounded(fe, "strikes", r.Strikes, MaxStrikes)

	s.RunnersOnFirst = flag(r.RunnersOnFirst)
	s.RunnersOnSecond = flag(r.RunnersOnSecond)
	s.RunnersOnThird = flag(r.RunnersOnThird)

	if r.ScoreDifference == nil {
		fe.add("scoreDifference", "is required")
	} else {
		s.ScoreDifference = *r.ScoreDifference
	}

	if r.ContextNotes != nil {
		s.ContextNotes = strings.TrimSpace(*r.ContextNotes)
	}

	if len(fe) > 0 {
		return model.GameSituation{}, fe
	}
	return s, nil
}

// Fields returns the failing fields of err, or nil if err is not a
// validation failure.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

func team(fe FieldErrors, field string, v *string) string {
	if v == nil {
		fe.add(field, "is required")
		return ""
	}
	name := strings.TrimSpace(*v)
	switch {
	case name == "":
		fe.add(field, "must not be blank")
	case utf8.RuneCountInString(name) > MaxTeamNameLength:
		fe.add(field, fmt.Sprintf("must be at most %d characters", MaxTeamNameLength))
	}
	return name
}

func bounded(fe FieldErrors, field string, v *int, maxVal int) int {
	if v == nil {
		fe.add(field, "is required")
		return 0
	}
	if *v < 0 || *v > maxVal {
		fe.add(field, fmt.Sprintf("must be between 0 and %d", maxVal))
		return 0
	}
	return *v
}

func flag(v *bool) bool { return v != nil && *v }
