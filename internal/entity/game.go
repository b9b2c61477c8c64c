package entity

import "time"

const (
	StatusOngoing = "ongoing"
	StatusWon     = "won"
	StatusTied    = "tied"
	StatusAborted = "aborted"

	ReasonLine     = "line"
	ReasonTie      = "tie"
	ReasonTimeout  = "timeout"
	ReasonError    = "error"
	ReasonShutdown = "shutdown"
)

const (
	ConnectFour = "connect-four"
	TicTacToe   = "tic-tac-toe"
)

// Game is the observable state of one match. Players[0] plays PlayerA, Players[1] plays PlayerB.
type Game struct {
	ID        string    `json:"id"`
	Variant   string    `json:"variant"`
	Board     *Board    `json:"board"`
	Players   [2]string `json:"players"`
	HouseID   string    `json:"house_id,omitempty"`
	Turn      Mark      `json:"turn"`
	Status    string    `json:"status"`
	Winner    string    `json:"winner,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	MoveCount int       `json:"move_count"`
	LastMove  *Position `json:"last_move,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusTied || that.Status == StatusAborted
}

func (that *Game) IsAborted() bool {
	return that.Status == StatusAborted
}

func (that *Game) PlayerOf(mark Mark) string {
	switch mark {
	case PlayerA:
		return that.Players[0]
	case PlayerB:
		return that.Players[1]
	default:
		return ""
	}
}

func (that *Game) MarkOf(playerID string) Mark {
	switch playerID {
	case that.Players[0]:
		return PlayerA
	case that.Players[1]:
		return PlayerB
	default:
		return Empty
	}
}

func (that *Game) CurrentPlayer() string {
	return that.PlayerOf(that.Turn)
}

func (that *Game) IsHouse(playerID string) bool {
	return that.HouseID != "" && playerID == that.HouseID
}

func (that *Game) IsHouseTurn() bool {
	return that.IsOngoing() && that.IsHouse(that.CurrentPlayer())
}

// Opponent returns the other participant, or "" when playerID is not seated.
func (that *Game) Opponent(playerID string) string {
	switch playerID {
	case that.Players[0]:
		return that.Players[1]
	case that.Players[1]:
		return that.Players[0]
	default:
		return ""
	}
}

// Humans lists the seated players that are not the house.
func (that *Game) Humans() []string {
	humans := make([]string, 0, len(that.Players))
	for _, id := range that.Players {
		if !that.IsHouse(id) {
			humans = append(humans, id)
		}
	}

	return humans
}

// OutcomeFor reports won/lost/tied for a participant of a finished game and "" otherwise.
func (that *Game) OutcomeFor(playerID string) string {
	switch that.Status {
	case StatusTied:
		return OutcomeTied
	case StatusWon:
		if that.Winner == playerID {
			return OutcomeWon
		}
		return OutcomeLost
	default:
		return ""
	}
}

func (that *Game) Clone() *Game {
	clone := *that
	if that.Board != nil {
		clone.Board = that.Board.Clone()
	}

	if that.LastMove != nil {
		lastMove := *that.LastMove
		clone.LastMove = &lastMove
	}

	return &clone
}
