package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/entity"
)

var ErrPlayerNotFound = fmt.Errorf("player %w", apperror.ErrNotFound)

const playerPrefix = "player:"

// releaseScript deletes the seat only while it still points at the given game.
var releaseScript = redis.NewScript(`
local seat = redis.call("GET", KEYS[1])
if not seat then
	return 0
end
if cjson.decode(seat)["game_id"] == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type PlayerRepository interface {
	// Seat claims the player for gameID and fails with apperror.ErrPlayerInGame when already seated.
	Seat(ctx context.Context, playerID, gameID string) error
	// Release frees the player if the seat still belongs to gameID.
	Release(ctx context.Context, playerID, gameID string) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type dbPlayer struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPlayerRepository stores seat locks. ttl bounds a seat left behind by a crashed process.
func NewPlayerRepository(client *redis.Client, ttl time.Duration) PlayerRepository {
	return &dbPlayer{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbPlayer) Seat(ctx context.Context, playerID, gameID string) error {
	playerJSON, err := json.Marshal(&entity.Player{ID: playerID, GameID: gameID})
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	claimed, err := that.client.SetNX(ctx, playerPrefix+playerID, playerJSON, that.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to seat player: %w", err)
	}

	if !claimed {
		return fmt.Errorf("player %s: %w", playerID, apperror.ErrPlayerInGame)
	}

	return nil
}

func (that *dbPlayer) Release(ctx context.Context, playerID, gameID string) error {
	if err := releaseScript.Run(ctx, that.client, []string{playerPrefix + playerID}, gameID).Err(); err != nil {
		return fmt.Errorf("failed to release player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	response, err := that.client.Get(ctx, playerPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	var player entity.Player
	if err = json.Unmarshal(response, &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &player, nil
}
