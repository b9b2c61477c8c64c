package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/testing/suite"
)

type mockGames struct {
	mock.Mock
}

func (that *mockGames) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGames) ActiveGameOf(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGames) Variants() []string {
	return []string{entity.ConnectFour, entity.TicTacToe}
}

type mockLeaderboard struct {
	mock.Mock
}

func (that *mockLeaderboard) Stats(ctx context.Context, playerID string) (*entity.PlayerStats, error) {
	args := that.Called(ctx, playerID)
	stats, _ := args.Get(0).(*entity.PlayerStats)
	return stats, args.Error(1)
}

func (that *mockLeaderboard) History(ctx context.Context, playerID string, limit int64) ([]entity.GameResult, error) {
	args := that.Called(ctx, playerID, limit)
	history, _ := args.Get(0).([]entity.GameResult)
	return history, args.Error(1)
}

func (that *mockLeaderboard) Top(ctx context.Context, variant string, limit int64) ([]entity.RankEntry, error) {
	args := that.Called(ctx, variant, limit)
	ranking, _ := args.Get(0).([]entity.RankEntry)
	return ranking, args.Error(1)
}

func newTestRouter() (http.Handler, *mockGames, *mockLeaderboard) {
	games := &mockGames{}
	leaderboard := &mockLeaderboard{}
	logger := suite.NewLogger()

	return NewRouter(logger, NewHandlers(logger, games, leaderboard)), games, leaderboard
}

func serve(router http.Handler, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	return recorder
}

func TestPing(t *testing.T) {
	router, _, _ := newTestRouter()

	response := serve(router, "/ping")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "pong", response.Body.String())
}

func TestGetGame(t *testing.T) {
	t.Run("Existing game", func(t *testing.T) {
		// Given: a live game
		router, games, _ := newTestRouter()
		games.On("GetGame", mock.Anything, "g1").
			Return(&entity.Game{ID: "g1", Variant: entity.TicTacToe, Status: entity.StatusOngoing}, nil).Once()

		// When: it is requested
		response := serve(router, "/games/g1")

		// Then: the snapshot is returned as json
		require.Equal(t, http.StatusOK, response.Code)
		var game entity.Game
		require.NoError(t, json.NewDecoder(response.Body).Decode(&game))
		assert.Equal(t, "g1", game.ID)
		assert.Equal(t, entity.StatusOngoing, game.Status)
	})

	t.Run("Unknown game", func(t *testing.T) {
		router, games, _ := newTestRouter()
		games.On("GetGame", mock.Anything, "nope").Return(nil, apperror.ErrNotFound).Once()

		response := serve(router, "/games/nope")

		assert.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("Storage failure", func(t *testing.T) {
		router, games, _ := newTestRouter()
		games.On("GetGame", mock.Anything, "g1").Return(nil, errors.New("redis down")).Once()

		response := serve(router, "/games/g1")

		assert.Equal(t, http.StatusInternalServerError, response.Code)
		assert.NotContains(t, response.Body.String(), "redis")
	})
}

func TestGetLeaderboard(t *testing.T) {
	t.Run("Defaults to the first variant", func(t *testing.T) {
		// Given: a ranking for connect four
		router, _, leaderboard := newTestRouter()
		leaderboard.On("Top", mock.Anything, entity.ConnectFour, int64(defaultLimit)).
			Return([]entity.RankEntry{{PlayerID: "alice", Wins: 3}}, nil).Once()

		// When: the leaderboard is requested without parameters
		response := serve(router, "/leaderboard")

		// Then: the ranking is returned
		require.Equal(t, http.StatusOK, response.Code)
		var body struct {
			Variant string             `json:"variant"`
			Ranking []entity.RankEntry `json:"ranking"`
		}
		require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
		assert.Equal(t, entity.ConnectFour, body.Variant)
		assert.Equal(t, []entity.RankEntry{{PlayerID: "alice", Wins: 3}}, body.Ranking)
	})

	t.Run("Limit is capped", func(t *testing.T) {
		router, _, leaderboard := newTestRouter()
		leaderboard.On("Top", mock.Anything, entity.TicTacToe, int64(maxLimit)).Return([]entity.RankEntry{}, nil).Once()

		response := serve(router, "/leaderboard?variant=tic-tac-toe&limit=5000")

		assert.Equal(t, http.StatusOK, response.Code)
		leaderboard.AssertExpectations(t)
	})

	t.Run("Unknown variant", func(t *testing.T) {
		router, _, leaderboard := newTestRouter()

		response := serve(router, "/leaderboard?variant=chess")

		assert.Equal(t, http.StatusBadRequest, response.Code)
		leaderboard.AssertNotCalled(t, "Top", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetPlayer(t *testing.T) {
	t.Run("Stats", func(t *testing.T) {
		router, _, leaderboard := newTestRouter()
		leaderboard.On("Stats", mock.Anything, "alice").
			Return(&entity.PlayerStats{PlayerID: "alice", Won: 2, Lost: 1}, nil).Once()

		response := serve(router, "/players/alice/stats")

		require.Equal(t, http.StatusOK, response.Code)
		var stats entity.PlayerStats
		require.NoError(t, json.NewDecoder(response.Body).Decode(&stats))
		assert.Equal(t, entity.PlayerStats{PlayerID: "alice", Won: 2, Lost: 1}, stats)
	})

	t.Run("History", func(t *testing.T) {
		router, _, leaderboard := newTestRouter()
		leaderboard.On("History", mock.Anything, "alice", int64(3)).
			Return([]entity.GameResult{{PlayerID: "alice", GameID: "g1", Outcome: entity.OutcomeWon}}, nil).Once()

		response := serve(router, "/players/alice/history?limit=3")

		require.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), `"game_id":"g1"`)
	})

	t.Run("Active game of a free player", func(t *testing.T) {
		router, games, _ := newTestRouter()
		games.On("ActiveGameOf", mock.Anything, "bob").Return(nil, apperror.ErrNotFound).Once()

		response := serve(router, "/players/bob/game")

		assert.Equal(t, http.StatusNotFound, response.Code)
	})
}
