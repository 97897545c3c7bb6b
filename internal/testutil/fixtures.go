package testutil

import (
	"fmt"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
)

// BoardFromRows builds a board from one string per row, top row first.
// 'X' is player one, 'O' is player two, '.' or '-' is empty.
func BoardFromRows(rows ...string) *core.Board {
	if len(rows) == 0 {
		panic("testutil: BoardFromRows needs at least one row")
	}
	board := core.NewBoard(len(rows), len(rows[0]))
	for r, line := range rows {
		if len(line) != board.Cols {
			panic(fmt.Sprintf("testutil: row %d has %d cells, want %d", r, len(line), board.Cols))
		}
		for c, ch := range line {
			switch ch {
			case 'X', 'x', '1':
				board.Set(r, c, core.Player1)
			case 'O', 'o', '2':
				board.Set(r, c, core.Player2)
			case '.', '-', '0':
			default:
				panic(fmt.Sprintf("testutil: unknown cell %q at row %d col %d", ch, r, c))
			}
		}
	}
	return board
}

// EmptyBoard returns an empty board of the default size
func EmptyBoard() *core.Board {
	return core.NewBoard(core.DefaultRows, core.DefaultCols)
}

// FullDrawBoard returns a full 6x7 board that contains no four-in-a-row for
// either player.
func FullDrawBoard() *core.Board {
	return BoardFromRows(
		"XXOOXXO",
		"OOXXOOX",
		"XXOOXXO",
		"OOXXOOX",
		"XXOOXXO",
		"OOXXOOX",
	)
}
