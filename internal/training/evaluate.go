package training

import (
	"fmt"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/policy"
)

// EvalStats counts the outcomes of greedy evaluation games
type EvalStats struct {
	Games  int
	Wins   int
	Losses int
	Draws  int
}

// WinRate returns Wins/Games, or 0 before any game
func (s EvalStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// Evaluate plays games with the agent acting greedily from seat against
// opponent. Game i is reset with seed+i. The agent's table is read, never
// written.
func Evaluate(engine *game.Engine, agent *policy.EpsilonGreedy, opponent policy.Policy, seat core.Mark, games int, seed int64) (EvalStats, error) {
	var stats EvalStats
	for i := 0; i < games; i++ {
		obs, info := engine.Reset(seed + int64(i))
		for !info.Status.IsTerminal() {
			var (
				a   int
				err error
			)
			if obs.Turn == seat {
				a, err = agent.Greedy(obs, info.LegalColumns)
			} else {
				a, err = opponent.SelectAction(obs, info.LegalColumns)
			}
			if err != nil {
				return stats, fmt.Errorf("game %d: %w", i, err)
			}
			res, err := engine.Step(a)
			if err != nil {
				return stats, fmt.Errorf("game %d: %w", i, err)
			}
			obs, info = res.Observation, res.Info
		}

		stats.Games++
		switch info.Winner {
		case seat:
			stats.Wins++
		case seat.Opponent():
			stats.Losses++
		default:
			stats.Draws++
		}
	}
	return stats, nil
}
