package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gamebot/internal/entity"
)

const (
	actionConnect    = "connect"
	actionGameNew    = "game:new"
	actionGameTurn   = "game:turn"
	actionGameUpdate = "game:update"
	actionNotice     = "notice"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request is the payload of every client action; each action reads its own fields.
type Request struct {
	PlayerID string           `json:"player_id,omitempty"`
	Variant  string           `json:"variant,omitempty"`
	Opponent string           `json:"opponent,omitempty"`
	GameID   string           `json:"game_id,omitempty"`
	Position *entity.Position `json:"position,omitempty"`
}

type Response struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Text   string         `json:"text,omitempty"`
	Notice string         `json:"notice,omitempty"`
	Error  string         `json:"error,omitempty"`
}
