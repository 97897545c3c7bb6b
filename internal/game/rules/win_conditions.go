package rules

import (
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/rs/zerolog"
)

// scan directions as (row step, col step): horizontal, vertical, down-right, up-right
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}

// IsWinner reports whether mark owns ConnectLength consecutive cells along a
// row, a column or either diagonal. It looks at the whole board and does not
// care whose turn it is.
func IsWinner(board *core.Board, mark core.Mark) bool {
	if !mark.IsPlayer() {
		return false
	}
	for row := 0; row < board.Rows; row++ {
		for col := 0; col < board.Cols; col++ {
			if board.Cells[board.Idx(row, col)] != mark {
				continue
			}
			for _, d := range directions {
				if runFrom(board, mark, row, col, d[0], d[1]) {
					return true
				}
			}
		}
	}
	return false
}

func runFrom(board *core.Board, mark core.Mark, row, col, dr, dc int) bool {
	endRow := row + dr*(core.ConnectLength-1)
	endCol := col + dc*(core.ConnectLength-1)
	if !board.InBounds(endRow, endCol) {
		return false
	}
	for i := 1; i < core.ConnectLength; i++ {
		if board.Cells[board.Idx(row+dr*i, col+dc*i)] != mark {
			return false
		}
	}
	return true
}

// WinnerOf returns the mark with a completed line, or core.NoMark.
// Player one is checked first; a legal game never has two winners.
func WinnerOf(board *core.Board) core.Mark {
	switch {
	case IsWinner(board, core.Player1):
		return core.Player1
	case IsWinner(board, core.Player2):
		return core.Player2
	default:
		return core.NoMark
	}
}

// Outcome is the result of checking a board after a move
type Outcome struct {
	GameOver bool
	Winner   core.Mark
	Draw     bool
}

// WinConditionChecker handles game over detection after each accepted move
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckAfterMove evaluates the board after mover dropped a disc.
// Only the mover can have completed a line on that move.
func (wc *WinConditionChecker) CheckAfterMove(board *core.Board, mover core.Mark) Outcome {
	if IsWinner(board, mover) {
		wc.logger.Debug().Int("winner", int(mover)).Msg("Winner determined")
		return Outcome{GameOver: true, Winner: mover}
	}
	if board.IsFull() {
		wc.logger.Debug().Msg("Board full without a winner, draw")
		return Outcome{GameOver: true, Draw: true}
	}
	return Outcome{}
}
