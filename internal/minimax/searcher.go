package minimax

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"lukechampine.com/frand"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/variant"
)

// WinScore is the value of a won position for PlayerA; PlayerB wins score -WinScore.
const WinScore = 4

var (
	ErrNoLegalMoves = errors.New("no legal moves")
	ErrInvalidMover = errors.New("mover must be PlayerA or PlayerB")
)

// Picker returns an index in [0, n).
type Picker func(n int) int

type Option func(*Searcher)

// WithPicker replaces the random tie-break among equally scored moves.
func WithPicker(pick Picker) Option {
	return func(that *Searcher) {
		that.pick = pick
	}
}

// Searcher runs a depth-bounded minimax without pruning. It keeps no state between calls.
type Searcher struct {
	logger *slog.Logger
	pick   Picker
}

func NewSearcher(logger *slog.Logger, opts ...Option) *Searcher {
	searcher := &Searcher{
		logger: logger,
		pick:   frand.Intn,
	}

	for _, opt := range opts {
		opt(searcher)
	}

	return searcher
}

// BestMove picks a move for mover among those with the best root score.
// The board is searched on a copy and left untouched.
func (that *Searcher) BestMove(board *entity.Board, v *variant.Variant, mover entity.Mark) (entity.Position, error) {
	log := that.logger.With("method", "BestMove", "variant", v.Kind, "mover", mover.String())

	if mover != entity.PlayerA && mover != entity.PlayerB {
		return entity.Position{}, ErrInvalidMover
	}

	work := board.Clone()

	var (
		best       []entity.Position
		bestScore  int
		maximizing = mover == entity.PlayerA
	)

	for _, move := range v.Rules.Moves(work) {
		landing, ok := work.Place(move, mover)
		if !ok {
			continue
		}

		score := that.value(work, v, mover, 1)
		work.Remove(landing)

		switch {
		case len(best) == 0 || better(maximizing, score, bestScore):
			best = append(best[:0], move)
			bestScore = score
		case score == bestScore:
			best = append(best, move)
		}
	}

	if len(best) == 0 {
		log.Error("house has no legal move", "board", work.Cells)
		return entity.Position{}, fmt.Errorf("%s search: %w", v.Kind, ErrNoLegalMoves)
	}

	move := best[that.pick(len(best))]
	log.Debug("move selected", "score", bestScore, "candidates", len(best), "row", move.Row, "col", move.Col)

	return move, nil
}

// Score returns the root score BestMove assigns to pos.
func (that *Searcher) Score(board *entity.Board, v *variant.Variant, mover entity.Mark, pos entity.Position) (int, error) {
	if mover != entity.PlayerA && mover != entity.PlayerB {
		return 0, ErrInvalidMover
	}

	work := board.Clone()

	if _, ok := work.Place(pos, mover); !ok {
		return 0, fmt.Errorf("score row %d col %d: %w", pos.Row, pos.Col, apperror.ErrInvalidPosition)
	}

	return that.value(work, v, mover, 1), nil
}

// value scores the board right after mover placed a mark at the given ply.
func (that *Searcher) value(board *entity.Board, v *variant.Variant, mover entity.Mark, depth int) int {
	if v.Rules.CheckWin(board, mover) {
		return WinScore * int(mover)
	}

	if v.Rules.CheckTie(board) {
		return 0
	}

	if depth >= v.SearchDepth {
		return v.Rules.Evaluate(board)
	}

	next := mover.Opponent()
	maximizing := next == entity.PlayerA

	bestScore := math.MaxInt
	if maximizing {
		bestScore = math.MinInt
	}

	searched := false
	for _, move := range v.Rules.Moves(board) {
		landing, ok := board.Place(move, next)
		if !ok {
			continue
		}

		score := that.value(board, v, next, depth+1)
		board.Remove(landing)

		searched = true
		if better(maximizing, score, bestScore) {
			bestScore = score
		}
	}

	if !searched {
		return 0
	}

	return bestScore
}

func better(maximizing bool, score, best int) bool {
	if maximizing {
		return score > best
	}

	return score < best
}
