package entity

// Mark is the content of a board cell. The numeric value doubles as the search sign:
// PlayerA maximizes, PlayerB minimizes.
type Mark int8

const (
	Empty   Mark = 0
	PlayerA Mark = 1
	PlayerB Mark = -1
)

func (that Mark) Opponent() Mark {
	return -that
}

func (that Mark) String() string {
	switch that {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	default:
		return "-"
	}
}

// Position addresses a cell. In drop mode only Col is read on input.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// directions lists all 8 neighbours; chains are scanned from every occupied cell.
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

type Board struct {
	Rows     int      `json:"rows"`
	Cols     int      `json:"cols"`
	Cells    [][]Mark `json:"cells"`
	DropMode bool     `json:"drop_mode"`
}

func NewBoard(rows, cols int, dropMode bool) *Board {
	cells := make([][]Mark, rows)
	for row := range cells {
		cells[row] = make([]Mark, cols)
	}

	return &Board{
		Rows:     rows,
		Cols:     cols,
		Cells:    cells,
		DropMode: dropMode,
	}
}

func (that *Board) InBounds(row, col int) bool {
	return row >= 0 && row < that.Rows && col >= 0 && col < that.Cols
}

func (that *Board) At(row, col int) Mark {
	return that.Cells[row][col]
}

// Place writes mark at pos and returns the cell that was actually filled.
// Drop mode lets the mark fall to the lowest empty row of pos.Col.
func (that *Board) Place(pos Position, mark Mark) (Position, bool) {
	if that.DropMode {
		if pos.Col < 0 || pos.Col >= that.Cols {
			return Position{}, false
		}

		for row := that.Rows - 1; row >= 0; row-- {
			if that.Cells[row][pos.Col] == Empty {
				that.Cells[row][pos.Col] = mark
				return Position{Row: row, Col: pos.Col}, true
			}
		}

		return Position{}, false
	}

	if !that.InBounds(pos.Row, pos.Col) || that.Cells[pos.Row][pos.Col] != Empty {
		return Position{}, false
	}

	that.Cells[pos.Row][pos.Col] = mark

	return pos, true
}

// Remove undoes the last Place at pos. Only the search backtracks this way.
func (that *Board) Remove(pos Position) {
	if !that.DropMode {
		if that.InBounds(pos.Row, pos.Col) {
			that.Cells[pos.Row][pos.Col] = Empty
		}
		return
	}

	if pos.Col < 0 || pos.Col >= that.Cols {
		return
	}

	for row := 0; row < that.Rows; row++ {
		if that.Cells[row][pos.Col] != Empty {
			that.Cells[row][pos.Col] = Empty
			return
		}
	}
}

// CanPlace reports whether Place would succeed without touching the board.
func (that *Board) CanPlace(pos Position) bool {
	if that.DropMode {
		return pos.Col >= 0 && pos.Col < that.Cols && that.Cells[0][pos.Col] == Empty
	}

	return that.InBounds(pos.Row, pos.Col) && that.Cells[pos.Row][pos.Col] == Empty
}

// LegalMoves returns open columns in drop mode and empty cells otherwise, in board order.
func (that *Board) LegalMoves() []Position {
	if that.DropMode {
		moves := make([]Position, 0, that.Cols)
		for col := 0; col < that.Cols; col++ {
			if that.Cells[0][col] == Empty {
				moves = append(moves, Position{Col: col})
			}
		}
		return moves
	}

	moves := make([]Position, 0, that.Rows*that.Cols)
	for row := 0; row < that.Rows; row++ {
		for col := 0; col < that.Cols; col++ {
			if that.Cells[row][col] == Empty {
				moves = append(moves, Position{Row: row, Col: col})
			}
		}
	}

	return moves
}

func (that *Board) TopRowFull() bool {
	for col := 0; col < that.Cols; col++ {
		if that.Cells[0][col] == Empty {
			return false
		}
	}

	return true
}

func (that *Board) Full() bool {
	for _, row := range that.Cells {
		for _, cell := range row {
			if cell == Empty {
				return false
			}
		}
	}

	return true
}

// LongestChain is the longest straight run of mark starting from any of its cells.
func (that *Board) LongestChain(mark Mark) int {
	longest := 0

	for row := 0; row < that.Rows; row++ {
		for col := 0; col < that.Cols; col++ {
			if that.Cells[row][col] != mark {
				continue
			}

			for _, dir := range directions {
				length := 1
				r, c := row+dir[0], col+dir[1]
				for that.InBounds(r, c) && that.Cells[r][c] == mark {
					length++
					r += dir[0]
					c += dir[1]
				}

				longest = max(longest, length)
			}
		}
	}

	return longest
}

func (that *Board) Clone() *Board {
	clone := NewBoard(that.Rows, that.Cols, that.DropMode)
	for row := range that.Cells {
		copy(clone.Cells[row], that.Cells[row])
	}

	return clone
}
