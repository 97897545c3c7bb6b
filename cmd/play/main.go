package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/policy"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/training"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/ui/console"
)

// display holds the settings a config reload may change while a game runs
type display struct {
	mu    sync.Mutex
	color bool
	showQ bool
}

func (d *display) get() (color, showQ bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.color, d.showQ
}

func (d *display) set(color, showQ bool) {
	d.mu.Lock()
	d.color, d.showQ = color, showQ
	d.mu.Unlock()
}

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	mode := flag.String("mode", "", "Opponent for O: human, random, heuristic, qlearning, sarsa (empty to use config default)")
	trainEpisodes := flag.Int("train-episodes", -1, "Episodes to train a qlearning/sarsa opponent (-1 to use config default)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showQ := flag.Bool("show-q", false, "Print the agent's Q-values before each of its moves")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	if *mode == "" {
		*mode = cfg.Console.Mode
	}
	if *trainEpisodes < 0 {
		*trainEpisodes = cfg.Console.TrainEpisodes
	}

	setupLogging(cfg.Logging.Level)

	engine, err := game.NewEngine(cfg.Game.Rows, cfg.Game.Cols,
		game.WithIllegalActionMode(game.IllegalActionReject),
		game.WithLogger(log.Logger),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine")
	}

	opponent, agent, err := newOpponent(*mode, *trainEpisodes, cfg, engine)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare opponent")
	}

	// Only the display settings follow config edits, so the watch starts once
	// the opponent has been built from the loaded config.
	settings := &display{}
	settings.set(cfg.Console.Color && !*noColor, cfg.Console.ShowQValues || *showQ)
	if path := config.ConfigFilePath(); path != "" {
		config.WatchConfig(func(c *config.Config, err error) {
			if err != nil {
				log.Warn().Err(err).Str("file", path).Msg("Ignoring invalid config edit")
				return
			}
			settings.set(c.Console.Color && !*noColor, c.Console.ShowQValues || *showQ)
			log.Info().Str("file", path).Msg("Config reloaded")
		})
	}

	color, _ := settings.get()
	renderer := console.NewRenderer(os.Stdout, color)
	prompter := console.NewPrompter(os.Stdin, os.Stdout)

	seed := time.Now().UnixNano()
	for n := 0; ; n++ {
		if err := playGame(engine, seed+int64(n), opponent, agent, renderer, prompter, settings); err != nil {
			if errors.Is(err, console.ErrInputClosed) {
				return
			}
			log.Fatal().Err(err).Msg("Game aborted")
		}
		if !prompter.Confirm("Continue playing (y=yes, n=no): ") {
			return
		}
	}
}

// newOpponent builds the policy playing O. A nil policy means a second human.
// For the learned modes the returned agent is the trained greedy policy.
func newOpponent(mode string, episodes int, cfg *config.Config, engine *game.Engine) (policy.Policy, *policy.EpsilonGreedy, error) {
	switch mode {
	case "human":
		return nil, nil, nil
	case "random":
		return policy.NewRandom(engine.Rand()), nil, nil
	case "heuristic":
		return policy.NewHeuristic(engine.Rand()), nil, nil
	}

	alg, err := training.ParseAlgorithm(mode)
	if err != nil {
		return nil, nil, err
	}

	params := cfg.Training.Params()
	params.Episodes = episodes
	params.LearnerSeat = int(core.Player2)

	trainEngine, err := game.NewEngine(cfg.Game.Rows, cfg.Game.Cols,
		game.WithIllegalActionMode(cfg.Game.IllegalActionMode()),
	)
	if err != nil {
		return nil, nil, err
	}

	fmt.Printf("Training %s opponent for %d episodes...\n", alg, episodes)
	var agent *policy.EpsilonGreedy
	switch alg {
	case training.SARSA:
		agent, _, err = training.TrainSARSA(trainEngine, params)
	default:
		agent, _, err = training.TrainQLearning(trainEngine, params)
	}
	if err != nil {
		return nil, nil, err
	}
	log.Info().Int("q_states", agent.Table().Len()).Msg("Opponent trained")

	agent.SetEpsilon(0)
	return agent, agent, nil
}

func playGame(engine *game.Engine, seed int64, opponent policy.Policy, agent *policy.EpsilonGreedy,
	renderer *console.Renderer, prompter *console.Prompter, settings *display) error {
	obs, info := engine.Reset(seed)

	for !info.Status.IsTerminal() {
		color, showQ := settings.get()
		renderer.SetColor(color)
		renderer.Println(renderer.Board(obs, info.MoveCount))

		var (
			col int
			err error
		)
		if obs.Turn == core.Player1 || opponent == nil {
			col, err = prompter.Column(fmt.Sprintf("Player %s, choose a column %v: ", obs.Turn, info.LegalColumns), info.LegalColumns)
		} else {
			if agent != nil && showQ {
				renderer.Println(renderer.QValues(agent.Table().Values(policy.KeyOf(obs)), info.LegalColumns))
			}
			col, err = opponent.SelectAction(obs, info.LegalColumns)
			if err == nil {
				renderer.Println(fmt.Sprintf("Other player's (%s) move: %d", obs.Turn, col))
			}
		}
		if err != nil {
			return err
		}

		step, err := engine.Step(col)
		if err != nil {
			return err
		}
		obs, info = step.Observation, step.Info
	}

	renderer.Println(renderer.Board(obs, info.MoveCount))
	renderer.Println(renderer.Result(info.Winner))
	return nil
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Logs go to stderr so they don't interleave with the board
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}
