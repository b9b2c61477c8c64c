package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/usecase"
)

var errNotIdentified = errors.New("send connect first")

// handleConnect binds the connection to a player id, minting one for new clients.
func (that *Server) handleConnect(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	req, err := decode(msg)
	if err != nil {
		conn.send(msg.Action, Response{Error: "malformed payload"})
		return err
	}

	playerID := req.PlayerID
	if playerID == "" {
		playerID = uuid.NewString()
	}

	that.register(playerID, conn)

	resp := Response{Player: &entity.Player{ID: playerID}}

	game, err := that.manager.ActiveGameOf(ctx, playerID)
	switch {
	case err == nil:
		resp.Player.GameID = game.ID
		resp.Game = game
		resp.Text = textOf(game)
	case !errors.Is(err, apperror.ErrNotFound) && !errors.Is(err, apperror.ErrSessionNotFound):
		log.Error("failed to look up active game", "playerID", playerID, "error", err)
	}

	conn.send(msg.Action, resp)

	log.Info("player connected", "playerID", playerID, "gameID", resp.Player.GameID)

	return nil
}

// handleNewGame starts a match against Opponent, or against the house when none is named.
func (that *Server) handleNewGame(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleNewGame", "playerID", conn.playerID)

	req, err := that.identified(conn, msg)
	if err != nil {
		return err
	}

	game, err := that.manager.StartGame(ctx, usecase.StartRequest{
		Variant: req.Variant,
		PlayerA: conn.playerID,
		PlayerB: req.Opponent,
		VsHouse: req.Opponent == "",
		Display: that,
	})
	if err != nil {
		conn.send(msg.Action, Response{Error: userMessage(err)})
		return fmt.Errorf("failed to start game: %w", err)
	}

	conn.send(msg.Action, Response{
		Player: &entity.Player{ID: conn.playerID, GameID: game.ID},
		Game:   game,
		Text:   textOf(game),
	})

	log.Info("game created", "gameID", game.ID, "variant", game.Variant)

	return nil
}

// handleGameTurn forwards a move. The outcome arrives as a game:update or a notice.
func (that *Server) handleGameTurn(ctx context.Context, conn *connection, msg *Message) error {
	req, err := that.identified(conn, msg)
	if err != nil {
		return err
	}

	if req.Position == nil {
		conn.send(msg.Action, Response{Error: "position is required"})
		return nil
	}

	gameID := req.GameID
	if gameID == "" {
		game, err := that.manager.ActiveGameOf(ctx, conn.playerID)
		if err != nil {
			conn.send(msg.Action, Response{Error: userMessage(err)})
			return nil
		}
		gameID = game.ID
	}

	if err = that.manager.SubmitMove(ctx, gameID, conn.playerID, *req.Position); err != nil {
		conn.send(msg.Action, Response{Error: userMessage(err)})
		if errors.Is(err, apperror.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to submit move: %w", err)
	}

	return nil
}

func (that *Server) identified(conn *connection, msg *Message) (*Request, error) {
	if conn.playerID == "" {
		conn.send(msg.Action, Response{Error: errNotIdentified.Error()})
		return nil, errNotIdentified
	}

	req, err := decode(msg)
	if err != nil {
		conn.send(msg.Action, Response{Error: "malformed payload"})
		return nil, err
	}

	return req, nil
}

func decode(msg *Message) (*Request, error) {
	var req Request
	if len(msg.Payload) == 0 {
		return &req, nil
	}

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &req, nil
}

// userMessage hides internal failures from clients.
func userMessage(err error) string {
	for _, known := range []error{
		apperror.ErrSessionNotFound,
		apperror.ErrPlayerInGame,
		apperror.ErrSelfPlay,
		apperror.ErrUnknownVariant,
		apperror.ErrNotFound,
		usecase.ErrManagerClosed,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "internal error"
}
