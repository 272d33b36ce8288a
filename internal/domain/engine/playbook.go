package engine

// Calls and advisories the rule chain can emit. The strings are part of the
// API contract: clients and stored history compare against them verbatim.
const (
	DefaultPitchCall   = "Four-seam fastball on the outer half."
	DefaultCatcherPlan = "Set up on the outer third and be ready with a quick pop time."
	DefaultInfield     = "Standard depth, ready to adjust based on runner movement."
	DefaultOutfield    = "Straight up positioning with normal depth."
	DefaultBattery     = "Pound the zone early and control the running game."
	DefaultHitterSign  = "Hunt a hittable fastball early in the count."
	DefaultRunnerSign  = "Standard lead, read the jump, and react to the catcher."
)

// Pitch calls.
const (
	PitchChaseSlider       = "Slider breaking off the plate to induce chase."
	PitchChallengeFastball = "Challenge four-seam fastball; must find the zone."
	PitchTwoSeamGroundBall = "Two-seam fastball for a ground ball strike."
	PitchHighFastball      = "Four-seam fastball up to give the catcher a high strike to throw on."
)

// Catcher plans.
const (
	CatcherMixLooks        = "Mix looks, vary timing, and be assertive with throws on steals."
	CatcherBlockEverything = "Block everything; priorities are the run at the plate and back picks at third."
	CatcherThrowThrough    = "If the runner on first breaks, throw through to second for the final out. " +
		"Third baseman shades toward the line until the runner commits home, then stays home."
)

// Defensive alignments.
const (
	InfieldDoublePlay  = "Middle infield at double-play depth; corners ready for bunt wheel."
	InfieldCornersIn   = "Corners in, middle ready to cut the run at the plate."
	InfieldCornersBack = "Corners back, middle ready to cover second on potential steal."
	OutfieldNoDoubles  = "No-doubles alignment—corners on the lines, outfield a step deeper."
)

// Offensive signs.
const (
	HitterTake           = "Take all the way until a strike is thrown."
	HitterShortenUp      = "Shorten up and battle; spoil pitcher’s pitch."
	HitterContact        = "Prioritize contact—lift to the outfield or hard ground ball."
	HitterGapToGap       = "Be aggressive—look to drive something gap-to-gap."
	HitterSelective      = "Stay selective; force the pitcher over the plate."
	RunnerSqueezeRead    = "Third-base runner: read the squeeze possibility and go on anything down."
	RunnerGreenLight     = "Green light steal—look for the pitcher’s first move."
	RunnerAggressiveLead = "Aggressive secondary lead; break on contact."
	RunnerRundown        = "Time up the pitcher; create a rundown to score the runner from third if signaled."
)

// Key points.
const (
	PointChasePitch      = "Attack with a chase pitch while staying square for a throw."
	PointAvoidFreePass   = "Avoid the free pass; attack the hitter with your best fastball."
	PointNeedStrike      = "Need a strike—trust the sinker to get back in the count."
	PointRunningGame     = "Keep the running game in check; communicate timing plays."
	PointPreventRun      = "Go to the plate on anything soft; prevent the run."
	PointFirstAndThird   = "Expect the offense to create movement with first-and-third pressure."
	PointSureOutAtSecond = "Win the inning by taking the sure out at second; keep third base home to freeze the runner."
	PointHighLeverage    = "High leverage: protect the lines and keep everything in front."
	PointStealCount      = "Good steal count: consider putting the runner from first in motion."
	PointDelaySteal      = "First-and-third offense: be ready for a designed delay steal."
)
