package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/testutil"
)

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(e events.Event) { r.events = append(r.events, e) }

func (r *recordingPublisher) types() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(testutil.NopLogger())}, opts...)
	e, err := NewEngine(core.DefaultRows, core.DefaultCols, opts...)
	require.NoError(t, err)
	return e
}

func playAll(t *testing.T, e *Engine, cols ...int) StepResult {
	t.Helper()
	var res StepResult
	for i, c := range cols {
		var err error
		res, err = e.Step(c)
		require.NoError(t, err, "move %d (column %d)", i, c)
	}
	return res
}

func diffCells(a, b []core.Cell) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t)

	obs := e.Observation()
	assert.Len(t, obs.Board, 42)
	assert.Equal(t, core.Player1, obs.Turn)
	for _, c := range obs.Board {
		assert.Equal(t, core.Empty, c)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, e.LegalActions())
	assert.Equal(t, StatusInProgress, e.Status())
	assert.Equal(t, 0, e.MoveCount())
	assert.NotEmpty(t, e.GameID())
}

func TestNewEngine_InvalidDimensions(t *testing.T) {
	_, err := NewEngine(3, 7)
	assert.ErrorIs(t, err, core.ErrInvalidDimensions)

	_, err = NewEngine(6, core.MaxDimension+1)
	assert.ErrorIs(t, err, core.ErrInvalidDimensions)

	e, err := NewEngine(4, 5)
	require.NoError(t, err)
	assert.Len(t, e.Observation().Board, 20)
}

func TestEngine_ResetClearsGame(t *testing.T) {
	e := newTestEngine(t)
	playAll(t, e, 3, 3, 4)
	firstID := e.GameID()

	obs, info := e.Reset(11)

	assert.Equal(t, core.Player1, obs.Turn)
	assert.Equal(t, 0, info.MoveCount)
	assert.Equal(t, core.NoMark, info.Winner)
	assert.False(t, info.IsDraw)
	assert.Len(t, info.LegalColumns, core.DefaultCols)
	assert.Equal(t, int64(11), e.Seed())
	assert.NotEqual(t, firstID, e.GameID())
	for _, c := range obs.Board {
		assert.Equal(t, core.Empty, c)
	}
}

func TestEngine_LegalStepChangesOneCell(t *testing.T) {
	e := newTestEngine(t)

	before := e.Observation()
	res, err := e.Step(3)
	require.NoError(t, err)

	assert.Equal(t, 1, diffCells(before.Board, res.Observation.Board))
	assert.Equal(t, core.Player1, e.Board().At(5, 3), "disc lands on the bottom row")
	assert.Equal(t, 1, res.Info.MoveCount)
	assert.Equal(t, 0.0, res.Reward)
	assert.False(t, res.Terminated)
	assert.False(t, res.Truncated)
	assert.Equal(t, core.Player2, res.Observation.Turn)

	res, err = e.Step(3)
	require.NoError(t, err)
	assert.Equal(t, core.Player2, e.Board().At(4, 3), "second disc stacks on the first")
	assert.Equal(t, 2, res.Info.MoveCount)
	assert.Equal(t, core.Player1, res.Info.Turn)
}

func TestEngine_TurnAlternates(t *testing.T) {
	e := newTestEngine(t)
	want := core.Player1
	for i, col := range []int{0, 1, 2, 3, 4, 5, 6, 0} {
		require.Equal(t, want, e.Turn(), "turn before move %d", i)
		res, err := e.Step(col)
		require.NoError(t, err)
		require.False(t, res.Terminated)
		want = want.Opponent()
	}
}

func TestEngine_VerticalWin(t *testing.T) {
	e := newTestEngine(t)

	res := playAll(t, e, 0, 1, 0, 1, 0, 1, 0)

	assert.Equal(t, 1.0, res.Reward)
	assert.True(t, res.Terminated)
	assert.Equal(t, core.Player1, res.Info.Winner)
	assert.False(t, res.Info.IsDraw)
	assert.Equal(t, StatusWonByPlayer1, e.Status())
	assert.Equal(t, core.Player1, res.Observation.Turn, "turn does not flip on a terminal step")
	assert.True(t, e.IsWinner(core.Player1))
	assert.False(t, e.IsWinner(core.Player2))
}

func TestEngine_HorizontalWinForPlayerTwo(t *testing.T) {
	e := newTestEngine(t)

	res := playAll(t, e, 6, 0, 6, 1, 5, 2, 4, 3)

	assert.Equal(t, 1.0, res.Reward, "reward belongs to the acting player")
	assert.True(t, res.Terminated)
	assert.Equal(t, core.Player2, res.Info.Winner)
	assert.Equal(t, StatusWonByPlayer2, e.Status())
	assert.Equal(t, core.Player2, e.Turn())
}

func TestEngine_IllegalActionLose(t *testing.T) {
	tests := []struct {
		name   string
		setup  []int
		action int
		mover  core.Mark
	}{
		{"column past the right edge", nil, 7, core.Player1},
		{"negative column", []int{2}, -1, core.Player2},
		{"full column", []int{0, 0, 0, 0, 0, 0}, 0, core.Player1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			playAll(t, e, tt.setup...)
			before := e.Observation()

			res, err := e.Step(tt.action)
			require.NoError(t, err)

			assert.Equal(t, -1.0, res.Reward)
			assert.True(t, res.Terminated)
			assert.Equal(t, tt.mover.Opponent(), res.Info.Winner)
			assert.Equal(t, StatusIllegalMoveLoss, e.Status())
			assert.Equal(t, before.Board, res.Observation.Board, "no disc is placed")
			assert.Equal(t, len(tt.setup), res.Info.MoveCount)
		})
	}
}

func TestEngine_IllegalActionReject(t *testing.T) {
	e := newTestEngine(t, WithIllegalActionMode(IllegalActionReject))
	playAll(t, e, 0, 0, 0, 0, 0, 0)

	before := e.Observation()
	beforeInfo := e.Info()

	_, err := e.Step(0)
	assert.ErrorIs(t, err, core.ErrColumnFull)
	assert.ErrorIs(t, err, core.ErrIllegalAction)

	_, err = e.Step(9)
	assert.ErrorIs(t, err, core.ErrColumnOutOfRange)

	assert.Equal(t, before, e.Observation(), "state must be unchanged")
	assert.Equal(t, beforeInfo, e.Info())
	assert.Equal(t, StatusInProgress, e.Status())

	res, err := e.Step(1)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Info.MoveCount)
}

func TestEngine_StepOnFullBoardIsDraw(t *testing.T) {
	e := newTestEngine(t)
	e.board = testutil.FullDrawBoard()
	e.moveCount = 42
	before := e.Observation()

	res, err := e.Step(3)
	require.NoError(t, err)

	assert.True(t, res.Terminated)
	assert.True(t, res.Info.IsDraw)
	assert.Equal(t, core.NoMark, res.Info.Winner)
	assert.Equal(t, 0.0, res.Reward)
	assert.Equal(t, StatusDraw, e.Status())
	assert.Equal(t, before.Board, res.Observation.Board)
	assert.Empty(t, res.Info.LegalColumns)
}

func TestEngine_LastDiscDraws(t *testing.T) {
	e := newTestEngine(t)
	board := testutil.FullDrawBoard()
	board.Set(0, 6, core.Empty)
	e.board = board
	e.moveCount = 41
	e.turn = core.Player2

	res, err := e.Step(6)
	require.NoError(t, err)

	assert.True(t, res.Terminated)
	assert.True(t, res.Info.IsDraw)
	assert.Equal(t, 0.0, res.Reward)
	assert.Equal(t, 42, res.Info.MoveCount)
	assert.Equal(t, core.Player2, res.Info.Turn)
}

func TestEngine_TerminalIsAbsorbing(t *testing.T) {
	e := newTestEngine(t)
	final := playAll(t, e, 0, 1, 0, 1, 0, 1, 0)
	require.True(t, final.Terminated)

	for _, col := range []int{2, 0, 42} {
		res, err := e.Step(col)
		require.NoError(t, err)
		assert.True(t, res.Terminated)
		assert.Equal(t, 0.0, res.Reward)
		assert.Equal(t, final.Observation, res.Observation)
		assert.Equal(t, final.Info, res.Info)
	}
}

func TestEngine_TerminalRejectsUnderRejectMode(t *testing.T) {
	e := newTestEngine(t, WithIllegalActionMode(IllegalActionReject))
	playAll(t, e, 0, 1, 0, 1, 0, 1, 0)

	_, err := e.Step(2)
	assert.ErrorIs(t, err, core.ErrGameOver)
	assert.Equal(t, 7, e.MoveCount())
}

func TestEngine_ObservationIsCopy(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Step(3)
	require.NoError(t, err)

	res.Observation.Board[0] = core.Player2
	res.Info.LegalColumns[0] = 99
	b := e.Board()
	b.Set(5, 0, core.Player2)

	assert.Equal(t, core.Empty, e.Board().At(0, 0))
	assert.Equal(t, core.Empty, e.Board().At(5, 0))
	assert.Equal(t, 0, e.LegalActions()[0])
}

func TestEngine_RandIsReseeded(t *testing.T) {
	e := newTestEngine(t)

	draw := func() []int {
		out := make([]int, 10)
		for i := range out {
			out[i] = e.Rand().Intn(core.DefaultCols)
		}
		return out
	}

	e.Reset(42)
	first := draw()
	e.Reset(42)
	assert.Equal(t, first, draw())
}

func TestEngine_PublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	e := newTestEngine(t, WithPublisher(pub))
	pub.events = nil

	e.Reset(1)
	playAll(t, e, 0, 1, 0, 1, 0, 1)
	_, err := e.Step(9)
	require.NoError(t, err)

	types := pub.types()
	require.Len(t, types, 9)
	assert.Equal(t, events.TypeGameStarted, types[0])
	for _, typ := range types[1:7] {
		assert.Equal(t, events.TypeMoveExecuted, typ)
	}
	assert.Equal(t, events.TypeMoveRejected, types[7])
	assert.Equal(t, events.TypeGameEnded, types[8])

	ended, ok := pub.events[8].(*events.GameEndedEvent)
	require.True(t, ok)
	assert.Equal(t, int(core.Player2), ended.Winner)
	assert.Equal(t, StatusIllegalMoveLoss.String(), ended.Status)
	assert.Equal(t, e.GameID(), ended.GameID())
}

func TestStepResult_Done(t *testing.T) {
	assert.False(t, StepResult{}.Done())
	assert.True(t, StepResult{Terminated: true}.Done())
	assert.True(t, StepResult{Truncated: true}.Done())
}

func TestObservation_BoardView(t *testing.T) {
	e := newTestEngine(t)
	playAll(t, e, 2)

	obs := e.Observation()
	view := obs.BoardView()
	assert.Equal(t, core.Player1, view.At(5, 2))

	view.Set(5, 3, core.Player2)
	assert.Equal(t, core.Empty, core.Cell(obs.Board[view.Idx(5, 3)]))
}
