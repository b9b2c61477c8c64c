package variant

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/config"
	"github.com/rocketscienceinc/gamebot/internal/entity"
)

// WinChecker decides terminal positions. CheckTie is only meaningful when CheckWin is false for the mover.
type WinChecker interface {
	CheckWin(board *entity.Board, mark entity.Mark) bool
	CheckTie(board *entity.Board) bool
}

type MoveGenerator interface {
	Moves(board *entity.Board) []entity.Position
}

// Heuristic scores a non-terminal position from PlayerA's side.
type Heuristic interface {
	Evaluate(board *entity.Board) int
}

type Rules interface {
	WinChecker
	MoveGenerator
	Heuristic
}

type Variant struct {
	Kind        string
	Rows        int
	Cols        int
	DropMode    bool
	WinLength   int
	SearchDepth int
	Rules       Rules
}

func (that *Variant) NewBoard() *entity.Board {
	return entity.NewBoard(that.Rows, that.Cols, that.DropMode)
}

// Winner returns the mark holding a winning line, or Empty.
func (that *Variant) Winner(board *entity.Board) entity.Mark {
	for _, mark := range []entity.Mark{entity.PlayerA, entity.PlayerB} {
		if that.Rules.CheckWin(board, mark) {
			return mark
		}
	}

	return entity.Empty
}

// New builds a variant of the given kind. Zero fields of conf take the kind's defaults.
func New(kind string, conf config.Variant) (*Variant, error) {
	switch kind {
	case entity.ConnectFour:
		return newConnectFour(conf)
	case entity.TicTacToe:
		return newTicTacToe(conf)
	default:
		return nil, fmt.Errorf("variant %q: %w", kind, apperror.ErrUnknownVariant)
	}
}

// Registry maps a variant kind to its rules.
type Registry map[string]*Variant

func NewRegistry(conf config.Game) (Registry, error) {
	connectFour, err := New(entity.ConnectFour, conf.ConnectFour)
	if err != nil {
		return nil, err
	}

	ticTacToe, err := New(entity.TicTacToe, conf.TicTacToe)
	if err != nil {
		return nil, err
	}

	return Registry{
		entity.ConnectFour: connectFour,
		entity.TicTacToe:   ticTacToe,
	}, nil
}

func (that Registry) Get(kind string) (*Variant, error) {
	v, ok := that[kind]
	if !ok {
		return nil, fmt.Errorf("variant %q: %w", kind, apperror.ErrUnknownVariant)
	}

	return v, nil
}

func (that Registry) Kinds() []string {
	kinds := make([]string, 0, len(that))
	for kind := range that {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	return kinds
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}

	return value
}
