package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/testutil"
)

func TestRenderer_Board(t *testing.T) {
	board := testutil.BoardFromRows(
		"....",
		"....",
		".O..",
		"XXO.",
	)
	obs := game.Observation{Board: board.CopyCells(), Turn: core.Player1, Rows: 4, Cols: 4}

	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	want := "Board after 4 moves:\n" +
		" 0  1  2  3 \n" +
		"------------\n" +
		" .  .  .  . \n" +
		" .  .  .  . \n" +
		" .  O  .  . \n" +
		" X  X  O  . \n"
	assert.Equal(t, want, r.Board(obs, 4))
}

func TestRenderer_QValues(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, false)

	got := r.QValues([]float64{0.1, -0.5, 0, 2}, []int{0, 1, 3, 9})
	assert.Equal(t, "Q-values: 0=+0.1000 1=-0.5000 3=+2.0000", got)
}

func TestRenderer_Result(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	assert.Equal(t, "=> Result: X wins!", r.Result(core.Player1))
	assert.Equal(t, "=> Result: O wins!", r.Result(core.Player2))
	assert.Equal(t, "=> Result: Draw", r.Result(core.NoMark))

	r.Println("hello")
	assert.Equal(t, "hello\n", buf.String())
}

func TestRenderer_SetColor(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)
	r.SetColor(false)

	assert.Equal(t, "=> Result: X wins!", r.Result(core.Player1), "plain output after turning colour off")
}
