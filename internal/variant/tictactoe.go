package variant

import (
	"fmt"

	"github.com/rocketscienceinc/gamebot/internal/config"
	"github.com/rocketscienceinc/gamebot/internal/entity"
)

const (
	ticTacToeSize  = 3
	ticTacToeDepth = 9
)

func newTicTacToe(conf config.Variant) (*Variant, error) {
	rows := orDefault(conf.Rows, ticTacToeSize)
	cols := orDefault(conf.Cols, ticTacToeSize)
	if rows != cols {
		return nil, fmt.Errorf("tic-tac-toe: board must be square, got %dx%d", rows, cols)
	}

	if conf.WinLength > 0 && conf.WinLength != rows {
		return nil, fmt.Errorf("tic-tac-toe: win length must equal the board size %d", rows)
	}

	return &Variant{
		Kind:        entity.TicTacToe,
		Rows:        rows,
		Cols:        cols,
		WinLength:   rows,
		SearchDepth: orDefault(conf.SearchDepth, ticTacToeDepth),
		Rules:       &ticTacToeRules{size: rows},
	}, nil
}

type ticTacToeRules struct {
	size int
}

// CheckWin sums every row, column and diagonal. A line sums to ±size only when one mark fills it.
func (that *ticTacToeRules) CheckWin(board *entity.Board, mark entity.Mark) bool {
	target := that.size * int(mark)
	if target == 0 {
		return false
	}

	var diagonal, antiDiagonal int
	for i := 0; i < that.size; i++ {
		var row, col int
		for j := 0; j < that.size; j++ {
			row += int(board.At(i, j))
			col += int(board.At(j, i))
		}

		if row == target || col == target {
			return true
		}

		diagonal += int(board.At(i, i))
		antiDiagonal += int(board.At(i, that.size-1-i))
	}

	return diagonal == target || antiDiagonal == target
}

func (that *ticTacToeRules) CheckTie(board *entity.Board) bool {
	return board.Full()
}

func (that *ticTacToeRules) Moves(board *entity.Board) []entity.Position {
	return board.LegalMoves()
}

func (that *ticTacToeRules) Evaluate(board *entity.Board) int {
	return chainDifference(board)
}
