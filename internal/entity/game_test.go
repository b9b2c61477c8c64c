package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame() *Game {
	return &Game{
		ID:      "123",
		Variant: TicTacToe,
		Board:   NewBoard(3, 3, false),
		Players: [2]string{"alice", "house"},
		HouseID: "house",
		Turn:    PlayerA,
		Status:  StatusOngoing,
	}
}

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsOngoing returns true when game status is ongoing", func(t *testing.T) {
		// Given: a game with StatusOngoing
		game := &Game{Status: StatusOngoing}

		// Then: it is ongoing and not finished
		assert.True(t, game.IsOngoing())
		assert.False(t, game.IsFinished())
	})

	t.Run("IsFinished returns true for every terminal status", func(t *testing.T) {
		for _, status := range []string{StatusWon, StatusTied, StatusAborted} {
			// Given: a game with a terminal status
			game := &Game{Status: status}

			// Then: it is finished and not ongoing
			assert.True(t, game.IsFinished(), status)
			assert.False(t, game.IsOngoing(), status)
		}
	})
}

func TestGame_Seats(t *testing.T) {
	t.Run("Maps marks to players and back", func(t *testing.T) {
		// Given: a game between alice and the house
		game := newTestGame()

		// Then: seats resolve in both directions
		assert.Equal(t, "alice", game.PlayerOf(PlayerA))
		assert.Equal(t, "house", game.PlayerOf(PlayerB))
		assert.Equal(t, "", game.PlayerOf(Empty))
		assert.Equal(t, PlayerA, game.MarkOf("alice"))
		assert.Equal(t, PlayerB, game.MarkOf("house"))
		assert.Equal(t, Empty, game.MarkOf("mallory"))
	})

	t.Run("Opponent of a stranger is empty", func(t *testing.T) {
		// Given: a game between alice and the house
		game := newTestGame()

		// Then: each seat sees the other one
		assert.Equal(t, "house", game.Opponent("alice"))
		assert.Equal(t, "alice", game.Opponent("house"))
		assert.Equal(t, "", game.Opponent("mallory"))
	})

	t.Run("House turn is derived from the current player", func(t *testing.T) {
		// Given: a game where alice is on turn
		game := newTestGame()
		assert.False(t, game.IsHouseTurn())

		// When: the turn passes to player B
		game.Turn = PlayerB

		// Then: it is the house's turn
		assert.True(t, game.IsHouseTurn())
		assert.Equal(t, []string{"alice"}, game.Humans())
	})

	t.Run("Game without house never reports a house turn", func(t *testing.T) {
		// Given: a game between two humans
		game := newTestGame()
		game.Players = [2]string{"alice", "bob"}
		game.HouseID = ""
		game.Turn = PlayerB

		// Then: no seat is the house
		assert.False(t, game.IsHouseTurn())
		assert.False(t, game.IsHouse(""))
		assert.Equal(t, []string{"alice", "bob"}, game.Humans())
	})
}

func TestGame_OutcomeFor(t *testing.T) {
	t.Run("Winner and loser", func(t *testing.T) {
		// Given: a game won by alice
		game := newTestGame()
		game.Status = StatusWon
		game.Winner = "alice"

		// Then: alice won and the house lost
		assert.Equal(t, OutcomeWon, game.OutcomeFor("alice"))
		assert.Equal(t, OutcomeLost, game.OutcomeFor("house"))
	})

	t.Run("Tie", func(t *testing.T) {
		// Given: a tied game
		game := newTestGame()
		game.Status = StatusTied

		// Then: both players tied
		assert.Equal(t, OutcomeTied, game.OutcomeFor("alice"))
		assert.Equal(t, OutcomeTied, game.OutcomeFor("house"))
	})

	t.Run("Ongoing and aborted games have no outcome", func(t *testing.T) {
		game := newTestGame()
		assert.Equal(t, "", game.OutcomeFor("alice"))

		game.Status = StatusAborted
		assert.Equal(t, "", game.OutcomeFor("alice"))
	})
}

func TestGame_Clone(t *testing.T) {
	// Given: a game with a move on the board
	game := newTestGame()
	landing, ok := game.Board.Place(Position{Row: 1, Col: 1}, PlayerA)
	require.True(t, ok)
	game.LastMove = &landing

	// When: the clone is mutated
	clone := game.Clone()
	clone.Board.Cells[0][0] = PlayerB
	clone.LastMove.Row = 2

	// Then: the original is untouched
	assert.Equal(t, Empty, game.Board.At(0, 0))
	assert.Equal(t, 1, game.LastMove.Row)
	assert.Equal(t, PlayerA, clone.Board.At(1, 1))
}
