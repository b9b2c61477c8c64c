package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/transport/render"
)

// Render pushes the snapshot to every seated player that is online.
func (that *Server) Render(_ context.Context, game *entity.Game) error {
	resp := Response{Game: game, Text: textOf(game)}

	for _, playerID := range game.Humans() {
		conn, ok := that.connectionOf(playerID)
		if !ok {
			continue
		}

		if !conn.send(actionGameUpdate, resp) {
			that.logger.Warn("dropped game update", "gameID", game.ID, "playerID", playerID)
		}
	}

	return nil
}

func (that *Server) Notice(_ context.Context, playerID, message string) error {
	conn, ok := that.connectionOf(playerID)
	if !ok {
		return fmt.Errorf("player %s: %w", playerID, errNotConnected)
	}

	conn.send(actionNotice, Response{Notice: message})

	return nil
}

func textOf(game *entity.Game) string {
	return render.Text(game, render.Plain, func(playerID string) string {
		if game.IsHouse(playerID) {
			return "house"
		}
		return playerID
	})
}
