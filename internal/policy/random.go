package policy

import (
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
)

// Random picks uniformly among the legal columns
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a random policy drawing from rng. Passing the engine's
// Rand ties the policy to the environment seed.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (p *Random) Name() string { return "random" }

func (p *Random) SelectAction(_ game.Observation, legal []int) (int, error) {
	if len(legal) == 0 {
		return 0, ErrNoLegalActions
	}
	return uniform(p.rng, legal), nil
}
