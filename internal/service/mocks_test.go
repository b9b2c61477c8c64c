package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/gamebot/internal/entity"
)

type mockDisplay struct {
	mock.Mock
}

func (that *mockDisplay) Render(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockDisplay) Notice(ctx context.Context, playerID, message string) error {
	args := that.Called(ctx, playerID, message)
	return args.Error(0)
}

type mockSink struct {
	mock.Mock
}

func (that *mockSink) Submit(ctx context.Context, result entity.GameResult) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

func resultFor(playerID, outcome string) any {
	return mock.MatchedBy(func(result entity.GameResult) bool {
		return result.PlayerID == playerID && result.Outcome == outcome
	})
}
