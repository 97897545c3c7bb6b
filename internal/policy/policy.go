// Package policy holds the action-selection strategies that drive either
// seat of the engine: random, heuristic and the tabular epsilon-greedy learner.
package policy

import (
	"errors"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
)

// ErrNoLegalActions is returned when a policy is asked to move with nothing to play
var ErrNoLegalActions = errors.New("no legal actions")

// Policy chooses a column for the player to move in obs
type Policy interface {
	Name() string
	SelectAction(obs game.Observation, legal []int) (int, error)
}

func uniform(rng *rand.Rand, legal []int) int {
	return legal[rng.Intn(len(legal))]
}
