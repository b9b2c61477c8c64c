package game

import "github.com/rocketscienceinc/gamebot/internal/entity"

// Event is what a session transitions on. Only MoveEvent and TimeoutEvent implement it.
type Event interface {
	isEvent()
}

// MoveEvent is a placement request from a seated player. In drop mode only Position.Col is read.
type MoveEvent struct {
	ActorID  string          `json:"actor_id"`
	Position entity.Position `json:"position"`
}

// TimeoutEvent fires when the player on the clock ran out of time. MoveCount is the count the timer was armed at.
type TimeoutEvent struct {
	MoveCount int `json:"move_count"`
}

func (MoveEvent) isEvent()    {}
func (TimeoutEvent) isEvent() {}

// Move is an applied placement; Position is the landing cell.
type Move struct {
	PlayerID string          `json:"player_id"`
	Mark     entity.Mark     `json:"mark"`
	Position entity.Position `json:"position"`
}

// Step is the result of one transition: the human move and the house reply, if any.
type Step struct {
	Moves    []Move `json:"moves,omitempty"`
	Finished bool   `json:"finished"`
}
