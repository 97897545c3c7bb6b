package policy

import (
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
)

// EpsilonGreedy explores uniformly with probability epsilon and otherwise
// plays the best legal column of its Q-table.
type EpsilonGreedy struct {
	table   *QTable
	epsilon float64
	rng     *rand.Rand
}

// NewEpsilonGreedy creates a learner policy over table. rng is the
// exploration stream and must not be shared with the environment.
func NewEpsilonGreedy(table *QTable, epsilon float64, rng *rand.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{table: table, epsilon: epsilon, rng: rng}
}

func (p *EpsilonGreedy) Name() string { return "epsilon-greedy" }

// SelectAction draws the exploration coin first, so the stream advances the
// same way whether or not the state has been seen.
func (p *EpsilonGreedy) SelectAction(obs game.Observation, legal []int) (int, error) {
	if len(legal) == 0 {
		return 0, ErrNoLegalActions
	}

	s := KeyOf(obs)
	p.table.Row(s)

	if p.rng.Float64() < p.epsilon {
		return uniform(p.rng, legal), nil
	}
	return p.table.ArgmaxLegal(s, legal), nil
}

// Greedy returns the best legal column without exploring or touching the table
func (p *EpsilonGreedy) Greedy(obs game.Observation, legal []int) (int, error) {
	if len(legal) == 0 {
		return 0, ErrNoLegalActions
	}
	return p.table.ArgmaxLegal(KeyOf(obs), legal), nil
}

func (p *EpsilonGreedy) Epsilon() float64 { return p.epsilon }

func (p *EpsilonGreedy) SetEpsilon(eps float64) { p.epsilon = eps }

func (p *EpsilonGreedy) Table() *QTable { return p.table }
