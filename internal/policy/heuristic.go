package policy

import (
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/rules"
)

// Heuristic is a one-ply opponent: take a winning column, otherwise block the
// opponent's winning column, otherwise play closest to the centre.
type Heuristic struct {
	rng *rand.Rand
}

// NewHeuristic creates a heuristic policy; rng breaks ties between equally
// central columns.
func NewHeuristic(rng *rand.Rand) *Heuristic {
	return &Heuristic{rng: rng}
}

func (p *Heuristic) Name() string { return "heuristic" }

func (p *Heuristic) SelectAction(obs game.Observation, legal []int) (int, error) {
	if len(legal) == 0 {
		return 0, ErrNoLegalActions
	}

	board := obs.BoardView()
	me := obs.Turn
	if !me.IsPlayer() {
		return uniform(p.rng, legal), nil
	}

	if col, ok := completingColumn(board, me, legal); ok {
		return col, nil
	}
	if col, ok := completingColumn(board, me.Opponent(), legal); ok {
		return col, nil
	}
	return p.central(board.Cols, legal), nil
}

// completingColumn returns the first legal column where a disc of mark
// completes a line.
func completingColumn(board *core.Board, mark core.Mark, legal []int) (int, bool) {
	for _, col := range legal {
		row := board.DropRow(col)
		if row < 0 {
			continue
		}
		board.Set(row, col, mark)
		won := rules.IsWinner(board, mark)
		board.Set(row, col, core.Empty)
		if won {
			return col, true
		}
	}
	return 0, false
}

func (p *Heuristic) central(cols int, legal []int) int {
	// doubled to keep even widths exact
	centre2 := cols - 1
	best := -1
	var ties []int
	for _, col := range legal {
		d := 2*col - centre2
		if d < 0 {
			d = -d
		}
		switch {
		case best < 0 || d < best:
			best = d
			ties = append(ties[:0], col)
		case d == best:
			ties = append(ties, col)
		}
	}
	return uniform(p.rng, ties)
}
