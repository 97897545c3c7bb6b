package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/policy"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/training"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	algorithm := flag.String("algorithm", "", "qlearning or sarsa (empty to use config default)")
	episodes := flag.Int("episodes", -1, "Number of training episodes (-1 to use config default)")
	seed := flag.Int64("seed", -1, "Base seed (-1 to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	returnsFile := flag.String("returns", "", "Write per-episode returns as CSV to this file (empty to use config default)")
	evalGames := flag.Int("eval", -1, "Greedy evaluation games after training (-1 to use config default)")
	var overrides overrideFlags
	flag.Var(&overrides, "set", "Override a config key, e.g. -set rewards.step_penalty=-0.01 (repeatable)")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	for _, o := range overrides {
		if err := config.Set(o.key, o.value); err != nil {
			log.Fatal().Err(err).Str("key", o.key).Msg("Invalid config override")
		}
	}
	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *algorithm == "" {
		*algorithm = cfg.Training.Algorithm
	}
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}
	if *returnsFile == "" {
		*returnsFile = cfg.Experience.ReturnsFile
	}
	if *evalGames == -1 {
		*evalGames = cfg.Training.EvalGames
	}
	params := cfg.Training.Params()
	if *episodes >= 0 {
		params.Episodes = *episodes
	}
	if *seed >= 0 {
		params.Seed = *seed
	}

	setupLogging(*logLevel, cfg.Logging.Format)

	alg, err := training.ParseAlgorithm(*algorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid algorithm")
	}

	runID := uuid.NewString()
	logger := log.Logger.With().Str("run_id", runID).Logger()

	// Illegal columns are counted from move.rejected events
	var rejected int
	bus := events.NewEventBusWithLogger(logger)
	bus.SubscribeFunc(events.TypeMoveRejected, func(events.Event) { rejected++ })

	sub := subscribers.NewLoggerSubscriber("training-log", logger, zerolog.DebugLevel)
	sub.SetEventFilter([]string{events.TypeGameEnded, events.TypeEpisodeCompleted, events.TypeTrainingProgress})
	if cfg.Logging.Events {
		bus.Subscribe(sub)
	}
	var publisher events.Publisher = bus

	engine, err := game.NewEngine(cfg.Game.Rows, cfg.Game.Cols,
		game.WithIllegalActionMode(cfg.Game.IllegalActionMode()),
		game.WithLogger(logger),
		game.WithPublisher(publisher),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine")
	}

	opponent := newOpponent(cfg.Training.Opponent, engine)
	trainerOpts := []training.Option{
		training.WithLogger(logger),
		training.WithRunID(runID),
		training.WithOpponent(opponent),
		training.WithRewards(cfg.Rewards.RewardConfig()),
		training.WithPublisher(publisher),
	}

	if cfg.Experience.Collect {
		persistence, err := experience.NewPersistenceLayer(cfg.Experience.PersistenceConfig(), logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create persistence layer")
		}
		collector := experience.NewCollector(runID, cfg.Experience.BufferCapacity, logger, experience.WithPersistence(persistence))
		defer func() {
			if err := collector.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close transition store")
			}
		}()
		trainerOpts = append(trainerOpts, training.WithCollector(collector))
	}

	trainer, err := training.NewTrainer(engine, alg, params, trainerOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create trainer")
	}

	// Stop between episodes on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	res, runErr := trainer.Run(ctx)
	if runErr != nil {
		logger.Error().Err(runErr).Int("completed_episodes", len(res.Returns)).Msg("Training stopped early")
	}

	logger.Info().
		Int("episodes", len(res.Returns)).
		Int("wins", res.Wins).
		Int("losses", res.Losses).
		Int("draws", res.Draws).
		Float64("mean_return", training.MeanReturn(res.Returns, 0)).
		Float64("final_window_return", training.MeanReturn(res.Returns, params.LogEvery)).
		Int("q_states", res.Table.Len()).
		Int("illegal_moves", rejected).
		Dur("elapsed", time.Since(start)).
		Msg("Training summary")

	if *returnsFile != "" {
		if err := experience.WriteReturnsFile(*returnsFile, res.Returns); err != nil {
			logger.Error().Err(err).Str("file", *returnsFile).Msg("Failed to write returns")
		} else {
			logger.Info().Str("file", *returnsFile).Msg("Wrote returns log")
		}
	}

	if runErr == nil && *evalGames > 0 {
		// evaluation games are not part of the training log
		bus.Unsubscribe(sub.ID())
		stats, err := training.Evaluate(engine, res.Policy, opponent, params.Seat(), *evalGames, params.Seed+int64(params.Episodes))
		if err != nil {
			logger.Error().Err(err).Msg("Evaluation failed")
		} else {
			logger.Info().
				Int("games", stats.Games).
				Int("wins", stats.Wins).
				Int("losses", stats.Losses).
				Int("draws", stats.Draws).
				Float64("win_rate", stats.WinRate()).
				Str("opponent", opponent.Name()).
				Msg("Greedy evaluation")
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
}

type override struct {
	key   string
	value string
}

// overrideFlags collects repeated -set key=value flags
type overrideFlags []override

func (o *overrideFlags) String() string {
	parts := make([]string, len(*o))
	for i, ov := range *o {
		parts[i] = ov.key + "=" + ov.value
	}
	return strings.Join(parts, ",")
}

func (o *overrideFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	*o = append(*o, override{key: key, value: value})
	return nil
}

func newOpponent(name string, engine *game.Engine) policy.Policy {
	if name == "heuristic" {
		return policy.NewHeuristic(engine.Rand())
	}
	return policy.NewRandom(engine.Rand())
}

func setupLogging(level, format string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// JSON output for production or when asked for
	if os.Getenv("APP_ENV") == "production" || format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
