package experience

import (
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
)

// RewardConfig holds the shaping terms applied to the learning agent's
// decisions on top of the engine's step reward
type RewardConfig struct {
	Win         float64 `mapstructure:"win"`
	Loss        float64 `mapstructure:"loss"`
	Draw        float64 `mapstructure:"draw"`
	StepPenalty float64 `mapstructure:"step_penalty"` // added to every agent decision, usually <= 0
}

// DefaultRewardConfig returns the default reward configuration
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Win:         1.0,
		Loss:        -1.0,
		Draw:        0.5,
		StepPenalty: 0.0,
	}
}

// AfterAgentMove returns the reward for the agent's own step: the engine
// reward, the step penalty and, if the move ended the game, the terminal term.
func (c RewardConfig) AfterAgentMove(step game.StepResult, seat core.Mark) float64 {
	reward := step.Reward + c.StepPenalty
	if step.Terminated {
		reward += c.terminal(step.Info, seat)
	}
	return reward
}

// AfterOpponentReply returns the shaping term for the opponent's reply. Only
// an opponent win or a draw count; every other reply is worth 0.
func (c RewardConfig) AfterOpponentReply(reply game.StepResult, seat core.Mark) float64 {
	if !reply.Terminated {
		return 0
	}
	switch {
	case reply.Info.Winner == seat.Opponent():
		return c.Loss
	case reply.Info.IsDraw:
		return c.Draw
	default:
		return 0
	}
}

func (c RewardConfig) terminal(info game.Info, seat core.Mark) float64 {
	switch {
	case info.Winner == seat:
		return c.Win
	case info.Winner == seat.Opponent():
		return c.Loss
	case info.IsDraw:
		return c.Draw
	default:
		return 0
	}
}
