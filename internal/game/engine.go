package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/rules"
)

// Engine is the Connect Four state machine. It owns the board, the player to
// move and the move counter; only Reset and Step change them.
type Engine struct {
	rows, cols int

	board     *core.Board
	turn      core.Mark
	moveCount int
	status    Status
	winner    core.Mark
	seed      int64
	gameID    string

	illegalMode IllegalActionMode
	rng         *rand.Rand
	checker     *rules.WinConditionChecker
	logger      zerolog.Logger
	publisher   events.Publisher
}

// Option configures an Engine
type Option func(*Engine)

// WithIllegalActionMode selects how Step treats illegal columns
func WithIllegalActionMode(mode IllegalActionMode) Option {
	return func(e *Engine) { e.illegalMode = mode }
}

// WithLogger sets the engine logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithPublisher makes the engine publish game events
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// NewEngine creates an engine for a rows x cols grid, already reset with seed 0.
func NewEngine(rows, cols int, opts ...Option) (*Engine, error) {
	if err := core.ValidateDimensions(rows, cols); err != nil {
		return nil, err
	}

	e := &Engine{
		rows:   rows,
		cols:   cols,
		rng:    rand.New(rand.NewSource(0)),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "engine").Logger()
	e.checker = rules.NewWinConditionChecker(e.logger)

	e.Reset(0)
	return e, nil
}

// NewDefaultEngine creates a 6x7 engine
func NewDefaultEngine(opts ...Option) *Engine {
	e, err := NewEngine(core.DefaultRows, core.DefaultCols, opts...)
	if err != nil {
		panic(err) // default dimensions are always valid
	}
	return e
}

// Reset starts a new game and reseeds the engine's random stream.
func (e *Engine) Reset(seed int64) (Observation, Info) {
	e.board = core.NewBoard(e.rows, e.cols)
	e.turn = core.Player1
	e.moveCount = 0
	e.status = StatusInProgress
	e.winner = core.NoMark
	e.seed = seed
	e.rng.Seed(uint64(seed))
	e.gameID = uuid.NewString()

	e.publish(events.NewGameStartedEvent(e.gameID, e.rows, e.cols, seed))

	return e.Observation(), e.Info()
}

// Step plays action (a column index) for the player to move.
//
// Under IllegalActionLose the call never fails for an out-of-range or full
// column: the game ends with reward -1 for the mover. Under
// IllegalActionReject such a call returns an error wrapping
// core.ErrIllegalAction and changes nothing. Terminal statuses are absorbing.
// An error wrapping core.ErrInvariantViolation means the engine is broken and
// must not be used further.
func (e *Engine) Step(action int) (StepResult, error) {
	if e.status.IsTerminal() {
		if e.illegalMode == IllegalActionReject {
			return StepResult{}, core.ErrGameOver
		}
		return e.result(0, true), nil
	}

	// A full board is a draw whatever column is asked for.
	if len(rules.LegalColumns(e.board)) == 0 {
		if err := e.finish(StatusDraw, core.NoMark); err != nil {
			return StepResult{}, err
		}
		return e.result(0, true), nil
	}

	mover := e.turn
	if err := rules.ValidateColumn(e.board, action); err != nil {
		err = core.WrapColumnError(mover, action, err)
		e.publish(events.NewMoveRejectedEvent(e.gameID, int(mover), action, err.Error()))

		if e.illegalMode == IllegalActionReject {
			e.logger.Debug().Err(err).Msg("Rejected illegal action")
			return StepResult{}, err
		}
		if err := e.finish(StatusIllegalMoveLoss, mover.Opponent()); err != nil {
			return StepResult{}, err
		}
		return e.result(-1, true), nil
	}

	row := e.board.DropRow(action)
	if row < 0 {
		return StepResult{}, fmt.Errorf("%w: column %d is legal but has no empty row", core.ErrInvariantViolation, action)
	}

	e.board.Set(row, action, mover)
	e.moveCount++
	e.publish(events.NewMoveExecutedEvent(e.gameID, int(mover), action, row, e.moveCount))

	outcome := e.checker.CheckAfterMove(e.board, mover)
	switch {
	case outcome.Winner != core.NoMark:
		if err := e.finish(WonBy(outcome.Winner), outcome.Winner); err != nil {
			return StepResult{}, err
		}
		return e.result(1, true), nil
	case outcome.Draw:
		if err := e.finish(StatusDraw, core.NoMark); err != nil {
			return StepResult{}, err
		}
		return e.result(0, true), nil
	default:
		e.turn = mover.Opponent()
		return e.result(0, false), nil
	}
}

// finish moves the engine into a terminal status. The turn is left on the
// player who made the final move.
func (e *Engine) finish(status Status, winner core.Mark) error {
	if !e.status.CanTransitionTo(status) {
		return fmt.Errorf("%w: transition %s -> %s", core.ErrInvariantViolation, e.status, status)
	}
	e.status = status
	e.winner = winner

	e.logger.Debug().
		Str("game_id", e.gameID).
		Str("status", status.String()).
		Int("winner", int(winner)).
		Int("move_count", e.moveCount).
		Msg("Game over")
	e.publish(events.NewGameEndedEvent(e.gameID, int(winner), status == StatusDraw, status.String(), e.moveCount))
	return nil
}

func (e *Engine) result(reward float64, terminated bool) StepResult {
	return StepResult{
		Observation: e.Observation(),
		Reward:      reward,
		Terminated:  terminated,
		Truncated:   false,
		Info:        e.Info(),
	}
}

func (e *Engine) publish(ev events.Event) {
	if e.publisher != nil {
		e.publisher.Publish(ev)
	}
}

// Observation returns a snapshot of the board and the player to move
func (e *Engine) Observation() Observation {
	return Observation{
		Board: e.board.CopyCells(),
		Turn:  e.turn,
		Rows:  e.rows,
		Cols:  e.cols,
	}
}

// Info returns the current info record
func (e *Engine) Info() Info {
	return Info{
		LegalColumns: rules.LegalColumns(e.board),
		MoveCount:    e.moveCount,
		Winner:       e.winner,
		IsDraw:       e.status == StatusDraw,
		Turn:         e.turn,
		Status:       e.status,
	}
}

// LegalActions returns the columns that can still take a disc
func (e *Engine) LegalActions() []int { return rules.LegalColumns(e.board) }

// IsWinner reports whether mark has a completed line on the current board
func (e *Engine) IsWinner(mark core.Mark) bool { return rules.IsWinner(e.board, mark) }

// Board returns a copy of the current board
func (e *Engine) Board() *core.Board { return e.board.Clone() }

// Rand exposes the engine's random stream, reseeded on every Reset. Only
// non-learning policies (e.g. the random opponent) draw from it.
func (e *Engine) Rand() *rand.Rand { return e.rng }

// Public accessors
func (e *Engine) Turn() core.Mark                      { return e.turn }
func (e *Engine) Status() Status                       { return e.status }
func (e *Engine) Winner() core.Mark                    { return e.winner }
func (e *Engine) MoveCount() int                       { return e.moveCount }
func (e *Engine) GameID() string                       { return e.gameID }
func (e *Engine) Seed() int64                          { return e.seed }
func (e *Engine) Rows() int                            { return e.rows }
func (e *Engine) Cols() int                            { return e.cols }
func (e *Engine) IllegalActionMode() IllegalActionMode { return e.illegalMode }
