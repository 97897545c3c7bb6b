package training

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/policy"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/testutil"
)

func TestMeanReturn(t *testing.T) {
	returns := []float64{2, -1, 0.5, 2}

	assert.Equal(t, 0.0, MeanReturn(nil, 10))
	assert.InDelta(t, 0.875, MeanReturn(returns, 0), 1e-12)
	assert.InDelta(t, 0.875, MeanReturn(returns, 100), 1e-12)
	assert.InDelta(t, 1.25, MeanReturn(returns, 2), 1e-12)
}

// columnPolicy always plays col when it is legal, otherwise the first legal column
type columnPolicy struct{ col int }

func (p columnPolicy) Name() string { return "column" }

func (p columnPolicy) SelectAction(_ game.Observation, legal []int) (int, error) {
	if len(legal) == 0 {
		return 0, policy.ErrNoLegalActions
	}
	for _, a := range legal {
		if a == p.col {
			return a, nil
		}
	}
	return legal[0], nil
}

func TestEvaluate(t *testing.T) {
	engine := game.NewDefaultEngine(game.WithLogger(testutil.NopLogger()))
	agent := policy.NewEpsilonGreedy(policy.NewQTable(core.DefaultCols), 1, testutil.NewTestRNG(1))

	// an untrained greedy agent stacks column 0
	stats, err := Evaluate(engine, agent, columnPolicy{col: 6}, core.Player1, 3, 0)
	assert.NoError(t, err)
	assert.Equal(t, EvalStats{Games: 3, Wins: 3}, stats)
	assert.Equal(t, 1.0, stats.WinRate())
	assert.Equal(t, 0, agent.Table().Len(), "evaluation never writes the table")

	stats, err = Evaluate(engine, agent, columnPolicy{col: 6}, core.Player2, 2, 0)
	assert.NoError(t, err)
	assert.Equal(t, EvalStats{Games: 2, Losses: 2}, stats)
	assert.Equal(t, 0.0, EvalStats{}.WinRate())
}
