package policy

import (
	"math"
	"sort"
	"strings"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/game"
)

// StateKey identifies a (board, player to move) pair. Equal observations
// always produce equal keys.
type StateKey string

// KeyOf encodes obs as one digit per cell followed by '|' and the turn digit
func KeyOf(obs game.Observation) StateKey {
	var sb strings.Builder
	sb.Grow(len(obs.Board) + 2)
	for _, c := range obs.Board {
		sb.WriteByte('0' + byte(c))
	}
	sb.WriteByte('|')
	sb.WriteByte('0' + byte(obs.Turn))
	return StateKey(sb.String())
}

// QTable maps states to one action value per column. Rows are created on
// first reference and start at zero.
type QTable struct {
	cols   int
	values map[StateKey][]float64
}

// NewQTable creates an empty table for a board with cols columns
func NewQTable(cols int) *QTable {
	return &QTable{
		cols:   cols,
		values: make(map[StateKey][]float64),
	}
}

// Cols returns the row length
func (q *QTable) Cols() int { return q.cols }

// Row returns the live row for s, creating a zero row if needed
func (q *QTable) Row(s StateKey) []float64 {
	row, ok := q.values[s]
	if !ok {
		row = make([]float64, q.cols)
		q.values[s] = row
	}
	return row
}

// Lookup returns a copy of the row for s without creating it
func (q *QTable) Lookup(s StateKey) ([]float64, bool) {
	row, ok := q.values[s]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(row))
	copy(out, row)
	return out, true
}

// Values returns a copy of the row for s, or zeros for an unseen state.
// It never grows the table.
func (q *QTable) Values(s StateKey) []float64 {
	if row, ok := q.Lookup(s); ok {
		return row
	}
	return make([]float64, q.cols)
}

// Value returns Q(s, a); unseen states are zero
func (q *QTable) Value(s StateKey, a int) float64 {
	row, ok := q.values[s]
	if !ok || a < 0 || a >= len(row) {
		return 0
	}
	return row[a]
}

// MaxLegal returns the largest value over the legal columns of s.
// With no legal columns it returns 0.
func (q *QTable) MaxLegal(s StateKey, legal []int) float64 {
	if len(legal) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, a := range legal {
		if v := q.Value(s, a); v > best {
			best = v
		}
	}
	return best
}

// ArgmaxLegal returns the legal column with the largest value, lowest index
// first on ties. legal must be non-empty.
func (q *QTable) ArgmaxLegal(s StateKey, legal []int) int {
	best := legal[0]
	bestV := math.Inf(-1)
	for _, a := range legal {
		if v := q.Value(s, a); v > bestV || (v == bestV && a < best) {
			best, bestV = a, v
		}
	}
	return best
}

// Update moves Q(s, a) toward target by step size alpha
func (q *QTable) Update(s StateKey, a int, alpha, target float64) {
	row := q.Row(s)
	row[a] += alpha * (target - row[a])
}

// Len returns the number of stored states
func (q *QTable) Len() int { return len(q.values) }

// States returns the stored keys in sorted order
func (q *QTable) States() []StateKey {
	keys := make([]StateKey, 0, len(q.values))
	for k := range q.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
