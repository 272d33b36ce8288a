package replay

import (
	"math/rand/v2"

	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/internal/domain/validation"
)

// Ranges of the generated situations.
const (
	maxGeneratedInning = 12
	maxScoreSwing      = 6
	seedStream         = 0x9e3779b97f4a7c15
)

var teams = []string{"Visitors", "Home", "Rivercats", "Sea Dogs", "Ironpigs", "Storm Chasers"} //nolint:gochecknoglobals // fixed name pool

// Generate returns n valid situations. The same seed always yields the same
// situations.
func Generate(seed uint64, n int) []model.GameSituation {
	r := rand.New(rand.NewPCG(seed, seed^seedStream)) //nolint:gosec // reproducible test data, not secrets
	out := make([]model.GameSituation, n)
	for i := range out {
		offense := r.IntN(len(teams))
		defense := (offense + 1 + r.IntN(len(teams)-1)) % len(teams)
		half := model.Top
		if r.IntN(2) == 1 {
			half = model.Bottom
		}
		out[i] = model.GameSituation{
			OffenseTeam:     teams[offense],
			DefenseTeam:     teams[defense],
			Inning:          1 + r.IntN(maxGeneratedInning),
			HalfInning:      half,
			Outs:            r.IntN(validation.MaxOuts + 1),
			Balls:           r.IntN(validation.MaxBalls + 1),
			Strikes:         r.IntN(validation.MaxStrikes + 1),
			RunnersOnFirst:  r.IntN(2) == 1,
			RunnersOnSecond: r.IntN(2) == 1,
			RunnersOnThird:  r.IntN(2) == 1,
			ScoreDifference: r.IntN(2*maxScoreSwing+1) - maxScoreSwing,
		}
	}
	return out
}
