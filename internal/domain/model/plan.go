package model

// DefensiveAlignment holds the three fixed alignment slots.
type DefensiveAlignment struct {
	Infield  string `json:"infield"`
	Outfield string `json:"outfield"`
	Battery  string `json:"battery"`
}

// OffensiveSigns holds the two fixed sign slots.
type OffensiveSigns struct {
	Hitter string `json:"hitter"`
	Runner string `json:"runner"`
}

// StrategyPlan is the recommendation produced for one situation.
type StrategyPlan struct {
	PitchCall          string             `json:"pitchCall"`
	CatcherPlan        string             `json:"catcherPlan"`
	DefensiveAlignment DefensiveAlignment `json:"defensiveAlignment"`
	OffensiveSigns     OffensiveSigns     `json:"offensiveSigns"`
	KeyPoints          []string           `json:"keyPoints"`
}
