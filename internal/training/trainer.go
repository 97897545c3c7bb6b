// Package training runs tabular Q-learning and SARSA against a fixed
// opponent on the Connect Four engine.
package training

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/policy"
)

// Trainer owns one training run: the engine, the learner's table and its
// exploration stream. It is not safe for concurrent use.
type Trainer struct {
	engine    *game.Engine
	algorithm Algorithm
	params    Params
	seat      core.Mark

	opponent  policy.Policy
	rewards   experience.RewardConfig
	collector *experience.Collector
	publisher events.Publisher
	logger    zerolog.Logger
	runID     string

	table *policy.QTable
	agent *policy.EpsilonGreedy
}

// Option configures a Trainer
type Option func(*Trainer)

// WithLogger sets the trainer logger
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// WithOpponent replaces the default random opponent
func WithOpponent(p policy.Policy) Option {
	return func(t *Trainer) { t.opponent = p }
}

// WithRewards replaces the default reward shaping
func WithRewards(cfg experience.RewardConfig) Option {
	return func(t *Trainer) { t.rewards = cfg }
}

// WithCollector records every learner transition
func WithCollector(c *experience.Collector) Option {
	return func(t *Trainer) { t.collector = c }
}

// WithPublisher publishes episode and progress events
func WithPublisher(p events.Publisher) Option {
	return func(t *Trainer) { t.publisher = p }
}

// WithRunID fixes the run id instead of generating one
func WithRunID(id string) Option {
	return func(t *Trainer) { t.runID = id }
}

// Result is everything a finished run produced
type Result struct {
	RunID        string
	Algorithm    Algorithm
	Policy       *policy.EpsilonGreedy
	Table        *policy.QTable
	Returns      []float64
	FinalEpsilon float64
	Wins         int
	Losses       int
	Draws        int
}

// NewTrainer creates a trainer. The default opponent is a random policy on
// the engine's own stream, so its choices follow the per-episode seed.
func NewTrainer(engine *game.Engine, algorithm Algorithm, params Params, opts ...Option) (*Trainer, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: nil engine", ErrInvalidParams)
	}
	algorithm, err := ParseAlgorithm(string(algorithm))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	t := &Trainer{
		engine:    engine,
		algorithm: algorithm,
		params:    params,
		seat:      params.Seat(),
		rewards:   experience.DefaultRewardConfig(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.opponent == nil {
		t.opponent = policy.NewRandom(engine.Rand())
	}
	if t.runID == "" {
		t.runID = uuid.NewString()
	}
	t.logger = t.logger.With().
		Str("component", "trainer").
		Str("run_id", t.runID).
		Str("algorithm", string(algorithm)).
		Logger()

	t.table = policy.NewQTable(engine.Cols())
	explore := rand.New(rand.NewSource(uint64(params.Seed)))
	t.agent = policy.NewEpsilonGreedy(t.table, params.EpsilonStart, explore)
	return t, nil
}

// RunID returns the id of this run
func (t *Trainer) RunID() string { return t.runID }

// Run plays params.Episodes episodes. ctx is checked between episodes; any
// error ends the run.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     t.runID,
		Algorithm: t.algorithm,
		Policy:    t.agent,
		Table:     t.table,
		Returns:   make([]float64, 0, t.params.Episodes),

		FinalEpsilon: t.agent.Epsilon(),
	}
	progress := newProgress(t.params, t.logger, t.publisher, t.runID)

	t.logger.Info().
		Int("episodes", t.params.Episodes).
		Float64("alpha", t.params.Alpha).
		Float64("gamma", t.params.Gamma).
		Int64("seed", t.params.Seed).
		Int("learner_seat", t.params.LearnerSeat).
		Str("opponent", t.opponent.Name()).
		Msg("Starting training run")

	for ep := 0; ep < t.params.Episodes; ep++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		ret, winner, err := t.runEpisode(ep)
		if err != nil {
			return res, fmt.Errorf("episode %d: %w", ep, err)
		}

		t.agent.SetEpsilon(math.Max(t.params.EpsilonEnd, t.agent.Epsilon()*t.params.EpsilonDecay))
		res.FinalEpsilon = t.agent.Epsilon()
		res.Returns = append(res.Returns, ret)
		switch winner {
		case t.seat:
			res.Wins++
		case t.seat.Opponent():
			res.Losses++
		default:
			res.Draws++
		}

		if t.collector != nil {
			// a cancel arriving mid-episode still flushes the finished episode
			if err := t.collector.EndEpisode(context.WithoutCancel(ctx), ep); err != nil {
				return res, err
			}
		}
		if t.publisher != nil {
			t.publisher.Publish(events.NewEpisodeCompletedEvent(t.runID, ep, ret, t.agent.Epsilon(), int(winner)))
		}
		progress.observe(ep, res.Returns, t.agent.Epsilon(), t.table.Len())
	}

	t.logger.Info().
		Int("wins", res.Wins).
		Int("losses", res.Losses).
		Int("draws", res.Draws).
		Float64("final_epsilon", res.FinalEpsilon).
		Int("q_states", t.table.Len()).
		Msg("Training run finished")
	return res, nil
}

// runEpisode plays one game and returns the learner's accumulated reward and
// the winner. Opponent moves are never recorded; each learner decision is
// paired with the opponent's reply before it is learned from.
func (t *Trainer) runEpisode(ep int) (float64, core.Mark, error) {
	obs, info := t.engine.Reset(t.params.Seed + int64(ep))

	var (
		ret     float64
		step    int
		next    int
		hasNext bool
	)

	for !info.Status.IsTerminal() {
		if obs.Turn != t.seat {
			res, err := t.opponentMove(obs, info.LegalColumns)
			if err != nil {
				return ret, core.NoMark, err
			}
			obs, info = res.Observation, res.Info
			continue
		}

		s := policy.KeyOf(obs)
		a := next
		if !hasNext {
			var err error
			if a, err = t.agent.SelectAction(obs, info.LegalColumns); err != nil {
				return ret, core.NoMark, err
			}
		}
		hasNext = false

		res, err := t.engine.Step(a)
		if err != nil {
			return ret, core.NoMark, err
		}
		r := t.rewards.AfterAgentMove(res, t.seat)

		if !res.Terminated {
			reply, err := t.opponentMove(res.Observation, res.Info.LegalColumns)
			if err != nil {
				return ret, core.NoMark, err
			}
			r += t.rewards.AfterOpponentReply(reply, t.seat)
			res = reply
		}

		target, nextAction, chosen, err := t.target(r, res)
		if err != nil {
			return ret, core.NoMark, err
		}
		next, hasNext = nextAction, chosen
		t.table.Update(s, a, t.params.Alpha, target)

		if t.collector != nil {
			t.collector.Record(experience.Transition{
				Episode:   ep,
				Step:      step,
				State:     s,
				Action:    a,
				Reward:    r,
				NextState: policy.KeyOf(res.Observation),
				NextLegal: res.Info.LegalColumns,
				Terminal:  res.Terminated,
			})
		}

		ret += r
		step++
		obs, info = res.Observation, res.Info
	}

	return ret, info.Winner, nil
}

// target computes the bootstrap target for reward r landing in next. For
// SARSA it also returns the action chosen in next, which the learner then
// plays.
func (t *Trainer) target(r float64, next game.StepResult) (float64, int, bool, error) {
	// s' gets a row on first reference, terminal or not
	sNext := policy.KeyOf(next.Observation)
	t.table.Row(sNext)
	if next.Terminated {
		return r, 0, false, nil
	}
	legal := next.Info.LegalColumns

	switch t.algorithm {
	case SARSA:
		aNext, err := t.agent.SelectAction(next.Observation, legal)
		if err != nil {
			return 0, 0, false, err
		}
		return r + t.params.Gamma*t.table.Value(sNext, aNext), aNext, true, nil
	default:
		return r + t.params.Gamma*t.table.MaxLegal(sNext, legal), 0, false, nil
	}
}

func (t *Trainer) opponentMove(obs game.Observation, legal []int) (game.StepResult, error) {
	a, err := t.opponent.SelectAction(obs, legal)
	if err != nil {
		return game.StepResult{}, fmt.Errorf("opponent %s: %w", t.opponent.Name(), err)
	}
	return t.engine.Step(a)
}

// TrainQLearning runs off-policy training with the default opponent and rewards
func TrainQLearning(engine *game.Engine, params Params) (*policy.EpsilonGreedy, []float64, error) {
	return train(engine, QLearning, params)
}

// TrainSARSA runs on-policy training with the default opponent and rewards
func TrainSARSA(engine *game.Engine, params Params) (*policy.EpsilonGreedy, []float64, error) {
	return train(engine, SARSA, params)
}

func train(engine *game.Engine, algorithm Algorithm, params Params) (*policy.EpsilonGreedy, []float64, error) {
	t, err := NewTrainer(engine, algorithm, params)
	if err != nil {
		return nil, nil, err
	}
	res, err := t.Run(context.Background())
	if err != nil {
		return nil, nil, err
	}
	return res.Policy, res.Returns, nil
}
