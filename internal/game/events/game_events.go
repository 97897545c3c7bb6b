package events

// Event type constants
const (
	TypeGameStarted      = "game.started"
	TypeGameEnded        = "game.ended"
	TypeMoveExecuted     = "move.executed"
	TypeMoveRejected     = "move.rejected"
	TypeEpisodeCompleted = "episode.completed"
	TypeTrainingProgress = "training.progress"
)

// GameStartedEvent is published when the engine is reset
type GameStartedEvent struct {
	BaseEvent
	Rows int
	Cols int
	Seed int64
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, rows, cols int, seed int64) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: newBase(TypeGameStarted, gameID),
		Rows:      rows,
		Cols:      cols,
		Seed:      seed,
	}
}

// MoveExecutedEvent is published after a disc has been placed
type MoveExecutedEvent struct {
	BaseEvent
	Player    int
	Column    int
	Row       int
	MoveCount int
}

// NewMoveExecutedEvent creates a new MoveExecutedEvent
func NewMoveExecutedEvent(gameID string, player, column, row, moveCount int) *MoveExecutedEvent {
	return &MoveExecutedEvent{
		BaseEvent: newBase(TypeMoveExecuted, gameID),
		Player:    player,
		Column:    column,
		Row:       row,
		MoveCount: moveCount,
	}
}

// MoveRejectedEvent is published when an illegal column is played, whether
// the engine turns it into a loss or refuses it.
type MoveRejectedEvent struct {
	BaseEvent
	Player int
	Column int
	Reason string
}

// NewMoveRejectedEvent creates a new MoveRejectedEvent
func NewMoveRejectedEvent(gameID string, player, column int, reason string) *MoveRejectedEvent {
	return &MoveRejectedEvent{
		BaseEvent: newBase(TypeMoveRejected, gameID),
		Player:    player,
		Column:    column,
		Reason:    reason,
	}
}

// GameEndedEvent is published when a game reaches a terminal status
type GameEndedEvent struct {
	BaseEvent
	Winner    int
	Draw      bool
	Status    string
	MoveCount int
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winner int, draw bool, status string, moveCount int) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Winner:    winner,
		Draw:      draw,
		Status:    status,
		MoveCount: moveCount,
	}
}

// EpisodeCompletedEvent is published by a trainer after every episode
type EpisodeCompletedEvent struct {
	BaseEvent
	Episode int
	Return  float64
	Epsilon float64
	Winner  int
}

// NewEpisodeCompletedEvent creates a new EpisodeCompletedEvent. runID is used as the game id.
func NewEpisodeCompletedEvent(runID string, episode int, ret, epsilon float64, winner int) *EpisodeCompletedEvent {
	return &EpisodeCompletedEvent{
		BaseEvent: newBase(TypeEpisodeCompleted, runID),
		Episode:   episode,
		Return:    ret,
		Epsilon:   epsilon,
		Winner:    winner,
	}
}

// TrainingProgressEvent is published every reporting window
type TrainingProgressEvent struct {
	BaseEvent
	Episode    int
	Episodes   int
	Epsilon    float64
	AvgReturn  float64
	TableSize  int
	WindowSize int
}

// NewTrainingProgressEvent creates a new TrainingProgressEvent
func NewTrainingProgressEvent(runID string, episode, episodes int, epsilon, avgReturn float64, tableSize, window int) *TrainingProgressEvent {
	return &TrainingProgressEvent{
		BaseEvent:  newBase(TypeTrainingProgress, runID),
		Episode:    episode,
		Episodes:   episodes,
		Epsilon:    epsilon,
		AvgReturn:  avgReturn,
		TableSize:  tableSize,
		WindowSize: window,
	}
}
