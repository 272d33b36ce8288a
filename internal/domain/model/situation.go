// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// HalfInning identifies which team is batting.
type HalfInning string

// Half-inning values. TOP means the visiting team bats.
const (
	Top    HalfInning = "top"
	Bottom HalfInning = "bottom"
)

// ParseHalfInning accepts "top" or "bottom" in any case.
func ParseHalfInning(s string) (HalfInning, error) {
	switch HalfInning(strings.ToLower(strings.TrimSpace(s))) {
	case Top:
		return Top, nil
	case Bottom:
		return Bottom, nil
	default:
		return "", fmt.Errorf("unknown half inning %q", s)
	}
}

// Valid reports whether h is one of the two known values.
func (h HalfInning) Valid() bool { return h == Top || h == Bottom }

// Title returns "Top" or "Bottom".
func (h HalfInning) Title() string {
	switch h {
	case Top:
		return "Top"
	case Bottom:
		return "Bottom"
	default:
		s := string(h)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	}
}

// GameSituation is a snapshot of the game before the next pitch.
// Ranges are enforced by the validation boundary, not here.
type GameSituation struct {
	OffenseTeam     string     `json:"offenseTeam"`
	DefenseTeam     string     `json:"defenseTeam"`
	Inning          int        `json:"inning"`
	HalfInning      HalfInning `json:"halfInning"`
	Outs            int        `json:"outs"`
	Balls           int        `json:"balls"`
	Strikes         int        `json:"strikes"`
	RunnersOnFirst  bool       `json:"runnersOnFirst"`
	RunnersOnSecond bool       `json:"runnersOnSecond"`
	RunnersOnThird  bool       `json:"runnersOnThird"`
	ScoreDifference int        `json:"scoreDifference"` // offense minus defense
	ContextNotes    string     `json:"contextNotes"`
}

// FirstAndThird reports runners on first and third at the same time.
func (s GameSituation) FirstAndThird() bool {
	return s.RunnersOnFirst && s.RunnersOnThird
}

// BaseState renders occupied bases as digits, e.g. "1-3".
func (s GameSituation) BaseState() string {
	b := []byte("---")
	if s.RunnersOnFirst {
		b[0] = '1'
	}
	if s.RunnersOnSecond {
		b[1] = '2'
	}
	if s.RunnersOnThird {
		b[2] = '3'
	}
	return string(b)
}

// Count renders balls and strikes as "b-s".
func (s GameSituation) Count() string {
	return fmt.Sprintf("%d-%d", s.Balls, s.Strikes)
}
