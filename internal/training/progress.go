package training

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/events"
)

// progress reports a windowed mean return every LogEvery episodes. It only
// observes; nothing it does feeds back into training.
type progress struct {
	every     int
	episodes  int
	runID     string
	logger    zerolog.Logger
	publisher events.Publisher
}

func newProgress(p Params, logger zerolog.Logger, publisher events.Publisher, runID string) *progress {
	return &progress{
		every:     p.LogEvery,
		episodes:  p.Episodes,
		runID:     runID,
		logger:    logger,
		publisher: publisher,
	}
}

func (p *progress) observe(ep int, returns []float64, epsilon float64, tableSize int) {
	if p.every <= 0 || (ep+1)%p.every != 0 {
		return
	}
	avg := MeanReturn(returns, p.every)

	p.logger.Info().
		Int("episode", ep+1).
		Int("episodes", p.episodes).
		Float64("epsilon", epsilon).
		Float64("avg_return", avg).
		Int("window", p.every).
		Int("q_states", tableSize).
		Msg("Training progress")

	if p.publisher != nil {
		p.publisher.Publish(events.NewTrainingProgressEvent(p.runID, ep+1, p.episodes, epsilon, avg, tableSize, p.every))
	}
}

// MeanReturn averages the last window returns (all of them when window <= 0
// or larger than the log). An empty log averages to 0.
func MeanReturn(returns []float64, window int) float64 {
	if len(returns) == 0 {
		return 0
	}
	if window > 0 && window < len(returns) {
		returns = returns[len(returns)-window:]
	}
	return stat.Mean(returns, nil)
}
