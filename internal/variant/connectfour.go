package variant

import (
	"fmt"

	"github.com/rocketscienceinc/gamebot/internal/config"
	"github.com/rocketscienceinc/gamebot/internal/entity"
)

const (
	connectFourRows      = 6
	connectFourCols      = 7
	connectFourWinLength = 4
	connectFourDepth     = 4
)

func newConnectFour(conf config.Variant) (*Variant, error) {
	v := &Variant{
		Kind:        entity.ConnectFour,
		Rows:        orDefault(conf.Rows, connectFourRows),
		Cols:        orDefault(conf.Cols, connectFourCols),
		DropMode:    true,
		WinLength:   orDefault(conf.WinLength, connectFourWinLength),
		SearchDepth: orDefault(conf.SearchDepth, connectFourDepth),
	}

	if v.WinLength > max(v.Rows, v.Cols) {
		return nil, fmt.Errorf("connect-four: win length %d does not fit a %dx%d board", v.WinLength, v.Rows, v.Cols)
	}

	v.Rules = &connectFourRules{winLength: v.WinLength}

	return v, nil
}

type connectFourRules struct {
	winLength int
}

// CheckWin accepts any run of at least winLength.
func (that *connectFourRules) CheckWin(board *entity.Board, mark entity.Mark) bool {
	return board.LongestChain(mark) >= that.winLength
}

func (that *connectFourRules) CheckTie(board *entity.Board) bool {
	return board.TopRowFull()
}

func (that *connectFourRules) Moves(board *entity.Board) []entity.Position {
	return board.LegalMoves()
}

func (that *connectFourRules) Evaluate(board *entity.Board) int {
	return chainDifference(board)
}

func chainDifference(board *entity.Board) int {
	return board.LongestChain(entity.PlayerA) - board.LongestChain(entity.PlayerB)
}
