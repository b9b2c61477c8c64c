package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/testing/suite"
)

func finishedGame(status, winner, reason string) *entity.Game {
	return &entity.Game{
		ID:        "g1",
		Variant:   entity.ConnectFour,
		Players:   [2]string{"alice", "house"},
		HouseID:   "house",
		Status:    status,
		Winner:    winner,
		Reason:    reason,
		UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Won game records a win and a loss", func(t *testing.T) {
		// Given: a game won by alice
		sink := &mockSink{}
		sink.On("Submit", mock.Anything, resultFor("alice", entity.OutcomeWon)).Return(nil).Once()
		sink.On("Submit", mock.Anything, resultFor("house", entity.OutcomeLost)).Return(nil).Once()
		recorder := NewRecorder(suite.NewLogger(), sink, true)

		// When: the game is recorded
		results := recorder.Record(ctx, finishedGame(entity.StatusWon, "alice", entity.ReasonLine))

		// Then: both participants got exactly one record
		require.Len(t, results, 2)
		assert.Equal(t, entity.GameResult{
			PlayerID:   "alice",
			OpponentID: "house",
			GameID:     "g1",
			Variant:    entity.ConnectFour,
			Outcome:    entity.OutcomeWon,
			Reason:     entity.ReasonLine,
			FinishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}, results[0])
		sink.AssertExpectations(t)
	})

	t.Run("Tied game records a tie for both", func(t *testing.T) {
		sink := &mockSink{}
		sink.On("Submit", mock.Anything, resultFor("alice", entity.OutcomeTied)).Return(nil).Once()
		sink.On("Submit", mock.Anything, resultFor("house", entity.OutcomeTied)).Return(nil).Once()
		recorder := NewRecorder(suite.NewLogger(), sink, true)

		results := recorder.Record(ctx, finishedGame(entity.StatusTied, "", entity.ReasonTie))

		assert.Len(t, results, 2)
		sink.AssertExpectations(t)
	})

	t.Run("House results can be skipped", func(t *testing.T) {
		// Given: a recorder configured to skip the house
		sink := &mockSink{}
		sink.On("Submit", mock.Anything, resultFor("alice", entity.OutcomeLost)).Return(nil).Once()
		recorder := NewRecorder(suite.NewLogger(), sink, false)

		// When: the house wins
		results := recorder.Record(ctx, finishedGame(entity.StatusWon, "house", entity.ReasonTimeout))

		// Then: only the human is recorded
		require.Len(t, results, 1)
		assert.Equal(t, "alice", results[0].PlayerID)
		sink.AssertNumberOfCalls(t, "Submit", 1)
	})

	t.Run("Aborted and ongoing games record nothing", func(t *testing.T) {
		sink := &mockSink{}
		recorder := NewRecorder(suite.NewLogger(), sink, true)

		assert.Empty(t, recorder.Record(ctx, finishedGame(entity.StatusAborted, "", entity.ReasonError)))
		assert.Empty(t, recorder.Record(ctx, finishedGame(entity.StatusOngoing, "", "")))
		sink.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Sink failure is swallowed", func(t *testing.T) {
		// Given: a sink that rejects the first record
		sink := &mockSink{}
		sink.On("Submit", mock.Anything, resultFor("alice", entity.OutcomeWon)).Return(errors.New("redis down")).Once()
		sink.On("Submit", mock.Anything, resultFor("house", entity.OutcomeLost)).Return(nil).Once()
		recorder := NewRecorder(suite.NewLogger(), sink, true)

		// When: the game is recorded
		results := recorder.Record(ctx, finishedGame(entity.StatusWon, "alice", entity.ReasonLine))

		// Then: the other record still went through
		require.Len(t, results, 1)
		assert.Equal(t, "house", results[0].PlayerID)
		sink.AssertExpectations(t)
	})
}
