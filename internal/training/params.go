package training

import (
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
)

// ErrInvalidParams is returned for hyperparameters outside their domain
var ErrInvalidParams = errors.New("invalid training parameters")

// Algorithm selects the bootstrap rule
type Algorithm string

const (
	// QLearning bootstraps from the best legal value of the next state
	QLearning Algorithm = "qlearning"
	// SARSA bootstraps from the value of the action actually chosen next
	SARSA Algorithm = "sarsa"
)

// ParseAlgorithm converts a name to an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case QLearning, SARSA:
		return Algorithm(s), nil
	case "q-learning", "q":
		return QLearning, nil
	default:
		return "", fmt.Errorf("unknown algorithm %q (want %q or %q)", s, QLearning, SARSA)
	}
}

// Params are the hyperparameters of a training run
type Params struct {
	Episodes     int     `mapstructure:"episodes"`
	Alpha        float64 `mapstructure:"alpha"`
	Gamma        float64 `mapstructure:"gamma"`
	EpsilonStart float64 `mapstructure:"epsilon_start"`
	EpsilonEnd   float64 `mapstructure:"epsilon_end"`
	EpsilonDecay float64 `mapstructure:"epsilon_decay"`
	Seed         int64   `mapstructure:"seed"`
	LogEvery     int     `mapstructure:"log_every"` // 0 disables progress reports
	LearnerSeat  int     `mapstructure:"learner_seat"`
}

// DefaultParams returns the reference hyperparameters
func DefaultParams() Params {
	return Params{
		Episodes:     50000,
		Alpha:        0.1,
		Gamma:        0.99,
		EpsilonStart: 1.0,
		EpsilonEnd:   0.05,
		EpsilonDecay: 0.9995,
		Seed:         7,
		LogEvery:     5000,
		LearnerSeat:  1,
	}
}

// Validate checks every field against its domain
func (p Params) Validate() error {
	switch {
	case p.Episodes < 0:
		return fmt.Errorf("%w: episodes must be >= 0, got %d", ErrInvalidParams, p.Episodes)
	case p.Alpha <= 0 || p.Alpha > 1:
		return fmt.Errorf("%w: alpha must be in (0, 1], got %g", ErrInvalidParams, p.Alpha)
	case p.Gamma < 0 || p.Gamma > 1:
		return fmt.Errorf("%w: gamma must be in [0, 1], got %g", ErrInvalidParams, p.Gamma)
	case p.EpsilonStart < 0 || p.EpsilonStart > 1:
		return fmt.Errorf("%w: epsilon_start must be in [0, 1], got %g", ErrInvalidParams, p.EpsilonStart)
	case p.EpsilonEnd < 0 || p.EpsilonEnd > p.EpsilonStart:
		return fmt.Errorf("%w: epsilon_end must be in [0, epsilon_start], got %g", ErrInvalidParams, p.EpsilonEnd)
	case p.EpsilonDecay <= 0 || p.EpsilonDecay > 1:
		return fmt.Errorf("%w: epsilon_decay must be in (0, 1], got %g", ErrInvalidParams, p.EpsilonDecay)
	case p.LogEvery < 0:
		return fmt.Errorf("%w: log_every must be >= 0, got %d", ErrInvalidParams, p.LogEvery)
	case p.LearnerSeat != int(core.Player1) && p.LearnerSeat != int(core.Player2):
		return fmt.Errorf("%w: learner_seat must be 1 or 2, got %d", ErrInvalidParams, p.LearnerSeat)
	}
	return nil
}

// Seat returns the learner's mark
func (p Params) Seat() core.Mark { return core.Mark(p.LearnerSeat) }
