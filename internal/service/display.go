package service

import (
	"context"

	"github.com/rocketscienceinc/gamebot/internal/entity"
)

// Display is the platform side of a session: it owns the rendering format.
type Display interface {
	Render(ctx context.Context, game *entity.Game) error
	Notice(ctx context.Context, playerID, message string) error
}

type LeaderboardSink interface {
	Submit(ctx context.Context, result entity.GameResult) error
}
