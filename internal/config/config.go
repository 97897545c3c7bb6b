package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/training"
)

// Config holds all configuration for the application
type Config struct {
	Game       GameConfig       `mapstructure:"game"`
	Training   TrainingConfig   `mapstructure:"training"`
	Rewards    RewardsConfig    `mapstructure:"rewards"`
	Experience ExperienceConfig `mapstructure:"experience"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Console    ConsoleConfig    `mapstructure:"console"`
}

// GameConfig holds board and rule settings
type GameConfig struct {
	Rows          int    `mapstructure:"rows"`
	Cols          int    `mapstructure:"cols"`
	IllegalAction string `mapstructure:"illegal_action"`
}

// TrainingConfig holds trainer hyperparameters
type TrainingConfig struct {
	Algorithm    string  `mapstructure:"algorithm"`
	Episodes     int     `mapstructure:"episodes"`
	Alpha        float64 `mapstructure:"alpha"`
	Gamma        float64 `mapstructure:"gamma"`
	EpsilonStart float64 `mapstructure:"epsilon_start"`
	EpsilonEnd   float64 `mapstructure:"epsilon_end"`
	EpsilonDecay float64 `mapstructure:"epsilon_decay"`
	Seed         int64   `mapstructure:"seed"`
	LogEvery     int     `mapstructure:"log_every"`
	LearnerSeat  int     `mapstructure:"learner_seat"`
	Opponent     string  `mapstructure:"opponent"`
	EvalGames    int     `mapstructure:"eval_games"`
}

// RewardsConfig holds the shaping terms
type RewardsConfig struct {
	Win         float64 `mapstructure:"win"`
	Loss        float64 `mapstructure:"loss"`
	Draw        float64 `mapstructure:"draw"`
	StepPenalty float64 `mapstructure:"step_penalty"`
}

// ExperienceConfig holds transition collection and output settings
type ExperienceConfig struct {
	Collect        bool   `mapstructure:"collect"`
	BufferCapacity int    `mapstructure:"buffer_capacity"`
	Persistence    string `mapstructure:"persistence"`
	BaseDir        string `mapstructure:"base_dir"`
	MaxFileSize    int64  `mapstructure:"max_file_size"`
	ReturnsFile    string `mapstructure:"returns_file"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Events bool   `mapstructure:"events"`
}

// ConsoleConfig holds console play settings
type ConsoleConfig struct {
	Mode          string `mapstructure:"mode"`
	Color         bool   `mapstructure:"color"`
	ShowQValues   bool   `mapstructure:"show_q_values"`
	TrainEpisodes int    `mapstructure:"train_episodes"`
}

var (
	// Global config instance. A published *Config is never modified; reloads
	// and Set replace it.
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.rows", core.DefaultRows)
	v.SetDefault("game.cols", core.DefaultCols)
	v.SetDefault("game.illegal_action", "lose")

	// Training defaults
	p := training.DefaultParams()
	v.SetDefault("training.algorithm", string(training.QLearning))
	v.SetDefault("training.episodes", p.Episodes)
	v.SetDefault("training.alpha", p.Alpha)
	v.SetDefault("training.gamma", p.Gamma)
	v.SetDefault("training.epsilon_start", p.EpsilonStart)
	v.SetDefault("training.epsilon_end", p.EpsilonEnd)
	v.SetDefault("training.epsilon_decay", p.EpsilonDecay)
	v.SetDefault("training.seed", p.Seed)
	v.SetDefault("training.log_every", p.LogEvery)
	v.SetDefault("training.learner_seat", p.LearnerSeat)
	v.SetDefault("training.opponent", "random")
	v.SetDefault("training.eval_games", 1000)

	// Reward defaults
	r := experience.DefaultRewardConfig()
	v.SetDefault("rewards.win", r.Win)
	v.SetDefault("rewards.loss", r.Loss)
	v.SetDefault("rewards.draw", r.Draw)
	v.SetDefault("rewards.step_penalty", r.StepPenalty)

	// Experience defaults
	pc := experience.DefaultPersistenceConfig()
	v.SetDefault("experience.collect", false)
	v.SetDefault("experience.buffer_capacity", 10000)
	v.SetDefault("experience.persistence", string(pc.Type))
	v.SetDefault("experience.base_dir", pc.BaseDir)
	v.SetDefault("experience.max_file_size", pc.MaxFileSize)
	v.SetDefault("experience.returns_file", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.events", false)

	// Console defaults
	v.SetDefault("console.mode", "random")
	v.SetDefault("console.color", true)
	v.SetDefault("console.show_q_values", false)
	v.SetDefault("console.train_episodes", p.Episodes)
}

// Init initializes the configuration
func Init(configPath string) error {
	mu.Lock()
	defer mu.Unlock()

	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/connect4-rl")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("C4RL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// no config file in the default locations; defaults apply
		case configPath != "" && errors.Is(err, fs.ErrNotExist):
			// explicitly requested file is missing; defaults apply
		default:
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return reload(v)
}

// Get returns the current config snapshot. Callers must treat it as read-only.
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}

	// Initialize with defaults if not already initialized
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// reload decodes and validates vp into a fresh Config and publishes it.
// Must be called with mu held for writing.
func reload(vp *viper.Viper) error {
	next := &Config{}
	if err := vp.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = next
	return nil
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	return reload(v)
}

// Set overrides key at runtime. On error the previous config stays in effect.
func Set(key string, value interface{}) error {
	mu.Lock()
	defer mu.Unlock()

	prev := v.Get(key)
	v.Set(key, value)
	if err := reload(v); err != nil {
		v.Set(key, prev)
		return err
	}
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	mu.RLock()
	defer mu.RUnlock()
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange runs on the
// watcher goroutine with the new snapshot, or with the snapshot still in
// effect and the reason when the edited file was rejected.
func WatchConfig(onChange func(c *Config, err error)) {
	mu.RLock()
	vp := v
	mu.RUnlock()

	vp.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		if vp != v {
			// superseded by a later Init
			mu.Unlock()
			return
		}
		err := reload(vp)
		c := cfg
		mu.Unlock()

		if onChange != nil {
			onChange(c, err)
		}
	})
	vp.WatchConfig()
}

// Params converts the training section into trainer hyperparameters
func (c TrainingConfig) Params() training.Params {
	return training.Params{
		Episodes:     c.Episodes,
		Alpha:        c.Alpha,
		Gamma:        c.Gamma,
		EpsilonStart: c.EpsilonStart,
		EpsilonEnd:   c.EpsilonEnd,
		EpsilonDecay: c.EpsilonDecay,
		Seed:         c.Seed,
		LogEvery:     c.LogEvery,
		LearnerSeat:  c.LearnerSeat,
	}
}

// RewardConfig converts the rewards section
func (c RewardsConfig) RewardConfig() experience.RewardConfig {
	return experience.RewardConfig{
		Win:         c.Win,
		Loss:        c.Loss,
		Draw:        c.Draw,
		StepPenalty: c.StepPenalty,
	}
}

// PersistenceConfig converts the experience section
func (c ExperienceConfig) PersistenceConfig() experience.PersistenceConfig {
	return experience.PersistenceConfig{
		Type:        experience.PersistenceType(c.Persistence),
		BaseDir:     c.BaseDir,
		MaxFileSize: c.MaxFileSize,
	}
}

// IllegalActionMode parses game.illegal_action. Validate has already
// rejected unknown values.
func (c GameConfig) IllegalActionMode() game.IllegalActionMode {
	mode, _ := game.ParseIllegalActionMode(c.IllegalAction)
	return mode
}

var (
	opponents    = map[string]bool{"random": true, "heuristic": true}
	consoleModes = map[string]bool{"human": true, "random": true, "heuristic": true, "qlearning": true, "sarsa": true}
	logLevels    = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true, "disabled": true}
)

// Validate validates the configuration values
func Validate(c *Config) error {
	if err := core.ValidateDimensions(c.Game.Rows, c.Game.Cols); err != nil {
		return fmt.Errorf("game.rows/game.cols: %w", err)
	}
	if _, ok := game.ParseIllegalActionMode(c.Game.IllegalAction); !ok {
		return fmt.Errorf("game.illegal_action must be \"lose\" or \"reject\", got %q", c.Game.IllegalAction)
	}

	if _, err := training.ParseAlgorithm(c.Training.Algorithm); err != nil {
		return fmt.Errorf("training.algorithm: %w", err)
	}
	if err := c.Training.Params().Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if !opponents[c.Training.Opponent] {
		return fmt.Errorf("training.opponent must be random or heuristic, got %q", c.Training.Opponent)
	}
	if c.Training.EvalGames < 0 {
		return fmt.Errorf("training.eval_games must be non-negative")
	}

	if c.Experience.BufferCapacity <= 0 {
		return fmt.Errorf("experience.buffer_capacity must be positive")
	}
	switch experience.PersistenceType(c.Experience.Persistence) {
	case experience.PersistenceTypeNone, experience.PersistenceTypeFile:
	default:
		return fmt.Errorf("experience.persistence: %w: %q", experience.ErrInvalidPersistenceType, c.Experience.Persistence)
	}
	if c.Experience.MaxFileSize < 0 {
		return fmt.Errorf("experience.max_file_size must be non-negative")
	}

	if !logLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	if !consoleModes[c.Console.Mode] {
		return fmt.Errorf("console.mode %q is not a known mode", c.Console.Mode)
	}
	if c.Console.TrainEpisodes < 0 {
		return fmt.Errorf("console.train_episodes must be non-negative")
	}

	return nil
}
