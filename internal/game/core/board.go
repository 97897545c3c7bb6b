package core

// Cell is the content of a single board position.
// 0 = empty, 1 = player one's disc, 2 = player two's disc.
type Cell uint8

// Mark identifies a player. It shares its values with Cell so a mark can be
// written straight into the board.
type Mark = Cell

const (
	Empty   Cell = 0
	Player1 Mark = 1
	Player2 Mark = 2
	NoMark  Mark = Empty
)

const (
	DefaultRows   = 6
	DefaultCols   = 7
	ConnectLength = 4
	MinDimension  = ConnectLength
	MaxDimension  = 16
)

// Opponent returns the other player's mark. Empty stays empty.
func (c Cell) Opponent() Mark {
	switch c {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return Empty
	}
}

// IsPlayer reports whether the cell holds a player's disc.
func (c Cell) IsPlayer() bool { return c == Player1 || c == Player2 }

func (c Cell) String() string {
	switch c {
	case Player1:
		return "X"
	case Player2:
		return "O"
	default:
		return "-"
	}
}

// Board is a Rows x Cols grid stored row-major.
// Row 0 is the top row; discs fall toward increasing row index.
type Board struct {
	Rows, Cols int
	Cells      []Cell // length = Rows*Cols
}

func NewBoard(rows, cols int) *Board {
	return &Board{Rows: rows, Cols: cols, Cells: make([]Cell, rows*cols)}
}

func (b *Board) Idx(row, col int) int      { return row*b.Cols + col }
func (b *Board) RowCol(idx int) (int, int) { return idx / b.Cols, idx % b.Cols }

// InBounds checks if the position lies on the board
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Rows && col >= 0 && col < b.Cols
}

// ValidColumn checks if col addresses a column of the board
func (b *Board) ValidColumn(col int) bool {
	return col >= 0 && col < b.Cols
}

func (b *Board) At(row, col int) Cell {
	return b.Cells[b.Idx(row, col)]
}

func (b *Board) Set(row, col int, c Cell) {
	b.Cells[b.Idx(row, col)] = c
}

// ColumnFull reports whether the top cell of col is occupied.
// Out-of-range columns count as full.
func (b *Board) ColumnFull(col int) bool {
	if !b.ValidColumn(col) {
		return true
	}
	return b.Cells[b.Idx(0, col)] != Empty
}

// DropRow returns the lowest empty row of col, or -1 if there is none.
func (b *Board) DropRow(col int) int {
	if !b.ValidColumn(col) {
		return -1
	}
	for row := b.Rows - 1; row >= 0; row-- {
		if b.Cells[b.Idx(row, col)] == Empty {
			return row
		}
	}
	return -1
}

// IsFull reports whether every column is full.
func (b *Board) IsFull() bool {
	for col := 0; col < b.Cols; col++ {
		if !b.ColumnFull(col) {
			return false
		}
	}
	return true
}

// Count returns the number of cells holding c.
func (b *Board) Count(c Cell) int {
	n := 0
	for _, cell := range b.Cells {
		if cell == c {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make([]Cell, len(b.Cells))
	copy(cells, b.Cells)
	return &Board{Rows: b.Rows, Cols: b.Cols, Cells: cells}
}

// CopyCells returns a copy of the cell slice
func (b *Board) CopyCells() []Cell {
	cells := make([]Cell, len(b.Cells))
	copy(cells, b.Cells)
	return cells
}
