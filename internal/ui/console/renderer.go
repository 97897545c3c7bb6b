// Package console renders boards and prompts for terminal play.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game/core"
)

const (
	player1Color = "12" // bright blue
	player2Color = "9"  // bright red
	emptyColor   = "8"
)

// Renderer turns observations into terminal text. Rows are printed top
// first, so discs appear to fall downward.
type Renderer struct {
	w   io.Writer
	out *termenv.Output
}

// NewRenderer creates a renderer writing to w. With color off (or a terminal
// that cannot show it) the output is plain ASCII.
func NewRenderer(w io.Writer, color bool) *Renderer {
	var out *termenv.Output
	if color {
		out = termenv.NewOutput(w)
	} else {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return &Renderer{w: w, out: out}
}

// SetColor switches colouring on or off
func (r *Renderer) SetColor(color bool) {
	*r = *NewRenderer(r.w, color)
}

func (r *Renderer) disc(c core.Cell) string {
	switch c {
	case core.Player1:
		return r.out.String("X").Foreground(r.out.Color(player1Color)).Bold().String()
	case core.Player2:
		return r.out.String("O").Foreground(r.out.Color(player2Color)).Bold().String()
	default:
		return r.out.String(".").Foreground(r.out.Color(emptyColor)).String()
	}
}

// Board renders obs with a column header
func (r *Renderer) Board(obs game.Observation, moveCount int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Board after %d moves:\n", moveCount)
	for c := 0; c < obs.Cols; c++ {
		fmt.Fprintf(&sb, "%2d ", c)
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", obs.Cols*3))
	sb.WriteString("\n")

	for row := 0; row < obs.Rows; row++ {
		for col := 0; col < obs.Cols; col++ {
			sb.WriteString(" ")
			sb.WriteString(r.disc(obs.Board[row*obs.Cols+col]))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// QValues renders the values of the legal columns, e.g. "Q-values: 0=+0.1000 3=-0.5000"
func (r *Renderer) QValues(values []float64, legal []int) string {
	parts := make([]string, 0, len(legal))
	for _, a := range legal {
		if a < 0 || a >= len(values) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d=%+.4f", a, values[a]))
	}
	return "Q-values: " + strings.Join(parts, " ")
}

// Result renders the final line of a game
func (r *Renderer) Result(winner core.Mark) string {
	switch winner {
	case core.Player1:
		return "=> Result: " + r.disc(core.Player1) + " wins!"
	case core.Player2:
		return "=> Result: " + r.disc(core.Player2) + " wins!"
	default:
		return "=> Result: Draw"
	}
}

// Println writes s and a newline
func (r *Renderer) Println(s string) {
	fmt.Fprintln(r.w, s)
}
