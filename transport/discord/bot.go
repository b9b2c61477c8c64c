// Package discord hosts games in Discord channels: a /game slash command opens a match
// and board buttons deliver moves.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/rocketscienceinc/gamebot/internal/config"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/usecase"
)

const (
	requestTimeout  = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

var errNotReady = errors.New("discord client is not connected")

type gameManager interface {
	StartGame(ctx context.Context, req usecase.StartRequest) (*entity.Game, error)
	SubmitMove(ctx context.Context, gameID, actorID string, pos entity.Position) error
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	Variants() []string
}

// messenger is the part of the REST client the display needs.
type messenger interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	UpdateMessage(channelID snowflake.ID, messageID snowflake.ID, messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// board is the channel message a game is drawn in.
type board struct {
	mu        sync.Mutex
	channelID snowflake.ID
	messageID snowflake.ID
	moveCount int
	finished  bool
}

type Bot struct {
	logger  *slog.Logger
	conf    config.Discord
	manager gameManager

	ctx  context.Context
	rest messenger

	boardsMutex sync.RWMutex
	boards      map[string]*board
	seats       map[string]string
}

func New(logger *slog.Logger, conf config.Discord, manager gameManager) *Bot {
	return &Bot{
		logger:  logger.With("component", "discord"),
		conf:    conf,
		manager: manager,
		ctx:     context.Background(),
		boards:  make(map[string]*board),
		seats:   make(map[string]string),
	}
}

// Start connects to the gateway, registers /game and serves interactions until ctx is cancelled.
func (that *Bot) Start(ctx context.Context) error {
	log := that.logger.With("method", "Start")

	appID, err := snowflake.Parse(that.conf.ApplicationID)
	if err != nil {
		return fmt.Errorf("invalid application id: %w", err)
	}

	client, err := disgo.New(that.conf.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds)),
		bot.WithEventManagerConfigOpts(bot.WithAsyncEventsEnabled()),
		bot.WithEventListenerFunc(that.onCommand),
		bot.WithEventListenerFunc(that.onComponent),
	)
	if err != nil {
		return fmt.Errorf("failed to create discord client: %w", err)
	}

	that.ctx = ctx
	that.rest = client.Rest

	commands := []discord.ApplicationCommandCreate{gameCommand(that.manager.Variants())}

	if that.conf.GuildID != "" {
		guildID, err := snowflake.Parse(that.conf.GuildID)
		if err != nil {
			return fmt.Errorf("invalid guild id: %w", err)
		}

		if _, err = client.Rest.SetGuildCommands(appID, guildID, commands); err != nil {
			return fmt.Errorf("failed to register guild commands: %w", err)
		}
	} else if _, err = client.Rest.SetGlobalCommands(appID, commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	if err = client.OpenGateway(ctx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	log.Info("discord bot started")

	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	client.Close(closeCtx)

	log.Info("discord bot stopped")

	return nil
}

func (that *Bot) bind(gameID string, ref *board, players []string) {
	that.boardsMutex.Lock()
	defer that.boardsMutex.Unlock()

	that.boards[gameID] = ref
	for _, playerID := range players {
		that.seats[playerID] = gameID
	}
}

func (that *Bot) unbind(game *entity.Game) {
	that.boardsMutex.Lock()
	defer that.boardsMutex.Unlock()

	delete(that.boards, game.ID)
	for _, playerID := range game.Humans() {
		if that.seats[playerID] == game.ID {
			delete(that.seats, playerID)
		}
	}
}

func (that *Bot) boardOf(gameID string) (*board, bool) {
	that.boardsMutex.RLock()
	defer that.boardsMutex.RUnlock()

	ref, ok := that.boards[gameID]

	return ref, ok
}

func (that *Bot) boardOfPlayer(playerID string) (*board, bool) {
	that.boardsMutex.RLock()
	gameID, ok := that.seats[playerID]
	that.boardsMutex.RUnlock()

	if !ok {
		return nil, false
	}

	return that.boardOf(gameID)
}
