package game

import (
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
)

// Observation is what a policy sees. Board is always a private copy.
type Observation struct {
	Board []core.Cell
	Turn  core.Mark
	Rows  int
	Cols  int
}

// BoardView rebuilds a board from the observation. The result shares no
// memory with the engine.
func (o Observation) BoardView() *core.Board {
	cells := make([]core.Cell, len(o.Board))
	copy(cells, o.Board)
	return &core.Board{Rows: o.Rows, Cols: o.Cols, Cells: cells}
}

// Info accompanies every Reset and Step result
type Info struct {
	LegalColumns []int
	MoveCount    int
	Winner       core.Mark // core.NoMark while undecided or on a draw
	IsDraw       bool
	Turn         core.Mark
	Status       Status
}

// StepResult is the outcome of one Step call. Reward is from the acting
// player's perspective.
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Info
}

// Done reports whether the episode is over
func (r StepResult) Done() bool { return r.Terminated || r.Truncated }

// IllegalActionMode selects what Step does with an illegal column
type IllegalActionMode int

const (
	// IllegalActionLose ends the game: the acting player gets -1 and the opponent wins.
	IllegalActionLose IllegalActionMode = iota
	// IllegalActionReject returns an error and leaves the state untouched.
	IllegalActionReject
)

func (m IllegalActionMode) String() string {
	switch m {
	case IllegalActionReject:
		return "reject"
	default:
		return "lose"
	}
}

// ParseIllegalActionMode accepts "lose" or "reject"
func ParseIllegalActionMode(s string) (IllegalActionMode, bool) {
	switch s {
	case "lose", "":
		return IllegalActionLose, true
	case "reject":
		return IllegalActionReject, true
	default:
		return IllegalActionLose, false
	}
}
