package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	logEvent := eventLogger.WithLevel(ls.logLevel)
	if logEvent == nil {
		return
	}

	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Int("rows", e.Rows).
			Int("cols", e.Cols).
			Int64("seed", e.Seed)

	case *events.MoveExecutedEvent:
		logEvent.
			Int("player", e.Player).
			Int("column", e.Column).
			Int("row", e.Row).
			Int("move_count", e.MoveCount)

	case *events.MoveRejectedEvent:
		logEvent.
			Int("player", e.Player).
			Int("column", e.Column).
			Str("reason", e.Reason)

	case *events.GameEndedEvent:
		logEvent.
			Int("winner", e.Winner).
			Bool("draw", e.Draw).
			Str("status", e.Status).
			Int("move_count", e.MoveCount)

	case *events.EpisodeCompletedEvent:
		logEvent.
			Int("episode", e.Episode).
			Float64("return", e.Return).
			Float64("epsilon", e.Epsilon).
			Int("winner", e.Winner)

	case *events.TrainingProgressEvent:
		logEvent.
			Int("episode", e.Episode).
			Int("episodes", e.Episodes).
			Float64("epsilon", e.Epsilon).
			Float64("avg_return", e.AvgReturn).
			Int("window", e.WindowSize).
			Int("q_states", e.TableSize)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}
