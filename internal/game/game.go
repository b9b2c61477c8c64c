package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/variant"
)

// ErrHouseMove marks a failed house search. The session is aborted when it is returned.
var ErrHouseMove = errors.New("house move failed")

type Searcher interface {
	BestMove(board *entity.Board, v *variant.Variant, mover entity.Mark) (entity.Position, error)
}

// Session is the state machine of one match. It is not safe for concurrent use:
// a single interaction loop owns it.
type Session struct {
	game     *entity.Game
	variant  *variant.Variant
	searcher Searcher
	now      func() time.Time
}

// New seats playerA first. houseID is empty for a game between two humans, then searcher may be nil.
func New(id string, v *variant.Variant, playerA, playerB, houseID string, searcher Searcher) *Session {
	now := time.Now().UTC()

	return &Session{
		game: &entity.Game{
			ID:        id,
			Variant:   v.Kind,
			Board:     v.NewBoard(),
			Players:   [2]string{playerA, playerB},
			HouseID:   houseID,
			Turn:      entity.PlayerA,
			Status:    entity.StatusOngoing,
			StartedAt: now,
			UpdatedAt: now,
		},
		variant:  v,
		searcher: searcher,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (that *Session) ID() string {
	return that.game.ID
}

func (that *Session) MoveCount() int {
	return that.game.MoveCount
}

func (that *Session) CurrentPlayer() string {
	return that.game.CurrentPlayer()
}

func (that *Session) IsFinished() bool {
	return that.game.IsFinished()
}

// Snapshot returns a deep copy of the game state.
func (that *Session) Snapshot() *entity.Game {
	return that.game.Clone()
}

// Start plays the house's opening move when the house holds the first seat.
func (that *Session) Start() (Step, error) {
	var step Step

	if that.game.MoveCount > 0 {
		return step, nil
	}

	err := that.houseReply(&step)
	step.Finished = that.game.IsFinished()

	return step, err
}

// Transition is the only way to change the session.
func (that *Session) Transition(event Event) (Step, error) {
	switch e := event.(type) {
	case MoveEvent:
		return that.onMove(e)
	case TimeoutEvent:
		return that.onTimeout(e)
	default:
		return Step{}, fmt.Errorf("unsupported event %T", event)
	}
}

func (that *Session) onMove(event MoveEvent) (Step, error) {
	var step Step

	if that.game.IsFinished() {
		return step, apperror.ErrGameFinished
	}

	if event.ActorID != that.game.CurrentPlayer() {
		return step, apperror.ErrNotYourTurn
	}

	if err := that.validate(event.Position); err != nil {
		return step, err
	}

	step.Moves = append(step.Moves, that.apply(event.ActorID, event.Position))

	err := that.houseReply(&step)
	step.Finished = that.game.IsFinished()

	return step, err
}

func (that *Session) onTimeout(event TimeoutEvent) (Step, error) {
	if that.game.IsFinished() {
		return Step{}, apperror.ErrGameFinished
	}

	// armed before the last move
	if event.MoveCount != that.game.MoveCount {
		return Step{}, nil
	}

	that.game.Winner = that.game.PlayerOf(that.game.Turn.Opponent())
	that.finish(entity.StatusWon, entity.ReasonTimeout)

	return Step{Finished: true}, nil
}

// houseReply searches and applies the house move when it is the house's turn.
func (that *Session) houseReply(step *Step) error {
	if !that.game.IsHouseTurn() {
		return nil
	}

	if that.searcher == nil {
		that.finish(entity.StatusAborted, entity.ReasonError)
		return fmt.Errorf("%w: no searcher configured", ErrHouseMove)
	}

	pos, err := that.searcher.BestMove(that.game.Board, that.variant, that.game.Turn)
	if err != nil {
		that.finish(entity.StatusAborted, entity.ReasonError)
		return fmt.Errorf("%w: %w", ErrHouseMove, err)
	}

	if err = that.validate(pos); err != nil {
		that.finish(entity.StatusAborted, entity.ReasonError)
		return fmt.Errorf("%w: searcher returned row %d col %d: %w", ErrHouseMove, pos.Row, pos.Col, err)
	}

	step.Moves = append(step.Moves, that.apply(that.game.HouseID, pos))

	return nil
}

func (that *Session) validate(pos entity.Position) error {
	board := that.game.Board

	if board.DropMode {
		if pos.Col < 0 || pos.Col >= board.Cols {
			return fmt.Errorf("column %d: %w", pos.Col, apperror.ErrInvalidPosition)
		}

		if !board.CanPlace(pos) {
			return fmt.Errorf("column %d: %w", pos.Col, apperror.ErrColumnFull)
		}

		return nil
	}

	if !board.InBounds(pos.Row, pos.Col) {
		return fmt.Errorf("row %d col %d: %w", pos.Row, pos.Col, apperror.ErrInvalidPosition)
	}

	if board.At(pos.Row, pos.Col) != entity.Empty {
		return fmt.Errorf("row %d col %d: %w", pos.Row, pos.Col, apperror.ErrCellOccupied)
	}

	return nil
}

// apply places a validated move for the player on turn, then checks win, tie and flips the turn.
func (that *Session) apply(playerID string, pos entity.Position) Move {
	mark := that.game.Turn
	landing, _ := that.game.Board.Place(pos, mark)

	that.game.MoveCount++
	that.game.LastMove = &landing
	that.game.UpdatedAt = that.now()

	switch {
	case that.variant.Rules.CheckWin(that.game.Board, mark):
		that.game.Winner = playerID
		that.finish(entity.StatusWon, entity.ReasonLine)
	case that.variant.Rules.CheckTie(that.game.Board):
		that.finish(entity.StatusTied, entity.ReasonTie)
	default:
		that.game.Turn = mark.Opponent()
	}

	return Move{PlayerID: playerID, Mark: mark, Position: landing}
}

func (that *Session) finish(status, reason string) {
	that.game.Status = status
	that.game.Reason = reason
	that.game.UpdatedAt = that.now()
}
