// Package render turns game snapshots into the text shown by chat and socket clients.
package render

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/gamebot/internal/entity"
)

type Symbols struct {
	Empty   string
	PlayerA string
	PlayerB string
}

var Plain = Symbols{Empty: ".", PlayerA: "X", PlayerB: "O"}

// Namer maps a player id to how the platform mentions it.
type Namer func(playerID string) string

func (that Symbols) Of(mark entity.Mark) string {
	switch mark {
	case entity.PlayerA:
		return that.PlayerA
	case entity.PlayerB:
		return that.PlayerB
	default:
		return that.Empty
	}
}

// Grid draws the board top row first. Drop boards get a column ruler below.
func Grid(board *entity.Board, symbols Symbols) string {
	var sb strings.Builder

	for row := range board.Rows {
		for col := range board.Cols {
			sb.WriteString(symbols.Of(board.At(row, col)))
		}
		sb.WriteByte('\n')
	}

	if board.DropMode {
		for col := range board.Cols {
			sb.WriteString(fmt.Sprint((col + 1) % 10))
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func Status(game *entity.Game, symbols Symbols, name Namer) string {
	switch game.Status {
	case entity.StatusOngoing:
		return fmt.Sprintf("%s %s to move", symbols.Of(game.Turn), name(game.CurrentPlayer()))
	case entity.StatusWon:
		if game.Reason == entity.ReasonTimeout {
			return fmt.Sprintf("%s ran out of time, %s wins", name(game.Opponent(game.Winner)), name(game.Winner))
		}
		return fmt.Sprintf("%s %s wins", symbols.Of(game.MarkOf(game.Winner)), name(game.Winner))
	case entity.StatusTied:
		return "It's a tie"
	case entity.StatusAborted:
		if game.Reason == entity.ReasonShutdown {
			return "Game stopped, the server is shutting down"
		}
		return "Game aborted"
	default:
		return game.Status
	}
}

// Text is the full message body: status line followed by the grid.
func Text(game *entity.Game, symbols Symbols, name Namer) string {
	return Status(game, symbols, name) + "\n" + Grid(game.Board, symbols)
}
