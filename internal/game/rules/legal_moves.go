package rules

import "github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"

// LegalColumns returns, in ascending order, the columns whose top cell is empty.
func LegalColumns(board *core.Board) []int {
	legal := make([]int, 0, board.Cols)
	for col := 0; col < board.Cols; col++ {
		if !board.ColumnFull(col) {
			legal = append(legal, col)
		}
	}
	return legal
}

// LegalActionMask returns one flag per column; true = the column accepts a disc.
func LegalActionMask(board *core.Board) []bool {
	mask := make([]bool, board.Cols)
	for col := 0; col < board.Cols; col++ {
		mask[col] = !board.ColumnFull(col)
	}
	return mask
}

// IsLegal reports whether col is on the board and not full
func IsLegal(board *core.Board, col int) bool {
	return !board.ColumnFull(col)
}

// ValidateColumn explains why col cannot be played, or returns nil.
func ValidateColumn(board *core.Board, col int) error {
	if !board.ValidColumn(col) {
		return core.ErrColumnOutOfRange
	}
	if board.ColumnFull(col) {
		return core.ErrColumnFull
	}
	return nil
}
