package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/usecase"
)

const (
	commandName    = "game"
	optionVariant  = "variant"
	optionOpponent = "opponent"

	customIDPrefix = "game"
)

var errMalformedCustomID = errors.New("malformed custom id")

func gameCommand(variants []string) discord.SlashCommandCreate {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(variants))
	for _, kind := range variants {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{Name: kind, Value: kind})
	}

	return discord.SlashCommandCreate{
		Name:        commandName,
		Description: "Start a board game",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:        optionVariant,
				Description: "Game to play",
				Required:    true,
				Choices:     choices,
			},
			discord.ApplicationCommandOptionUser{
				Name:        optionOpponent,
				Description: "Who to play against; the house plays when omitted",
			},
		},
	}
}

func (that *Bot) onCommand(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	if data.CommandName() != commandName {
		return
	}

	log := that.logger.With("method", "onCommand", "playerID", event.User().ID.String())

	req := usecase.StartRequest{
		Variant: data.String(optionVariant),
		PlayerA: event.User().ID.String(),
		VsHouse: true,
		Display: that,
	}

	if opponent, ok := data.OptUser(optionOpponent); ok && !opponent.Bot {
		req.PlayerB = opponent.ID.String()
		req.VsHouse = false
	}

	ctx, cancel := context.WithTimeout(that.ctx, requestTimeout)
	defer cancel()

	game, err := that.manager.StartGame(ctx, req)
	if err != nil {
		log.Warn("failed to start game", "error", err)
		_ = event.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent(userMessage(err)).
			SetEphemeral(true).
			Build())
		return
	}

	log = log.With("gameID", game.ID)

	if err = event.CreateMessage(buildMessage(game, that.mention(game))); err != nil {
		log.Error("failed to post board", "error", err)
		return
	}

	message, err := event.Client().Rest.GetInteractionResponse(event.ApplicationID(), event.Token())
	if err != nil {
		log.Error("failed to fetch board message", "error", err)
		return
	}

	that.bind(game.ID, &board{channelID: message.ChannelID, messageID: message.ID, moveCount: -1}, game.Humans())

	// the loop may have moved on while the message was being posted
	latest, err := that.manager.GetGame(ctx, game.ID)
	if err != nil {
		log.Warn("failed to refresh game", "error", err)
		return
	}

	if err = that.Render(ctx, latest); err != nil {
		log.Warn("failed to refresh board", "error", err)
	}
}

func (that *Bot) onComponent(event *events.ComponentInteractionCreate) {
	gameID, pos, err := parseCustomID(event.Data.CustomID())
	if err != nil {
		return
	}

	playerID := event.User().ID.String()
	log := that.logger.With("method", "onComponent", "gameID", gameID, "playerID", playerID)

	if err = event.DeferUpdateMessage(); err != nil {
		log.Warn("failed to acknowledge move", "error", err)
	}

	ctx, cancel := context.WithTimeout(that.ctx, requestTimeout)
	defer cancel()

	if err = that.manager.SubmitMove(ctx, gameID, playerID, pos); err != nil {
		log.Info("move rejected", "error", err)
		_, _ = event.Client().Rest.CreateFollowupMessage(event.ApplicationID(), event.Token(),
			discord.NewMessageCreateBuilder().
				SetContent(userMessage(err)).
				SetEphemeral(true).
				Build())
	}
}

func customID(gameID string, pos entity.Position) string {
	return fmt.Sprintf("%s:%s:%d:%d", customIDPrefix, gameID, pos.Row, pos.Col)
}

func parseCustomID(id string) (string, entity.Position, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 4 || parts[0] != customIDPrefix || parts[1] == "" {
		return "", entity.Position{}, errMalformedCustomID
	}

	row, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", entity.Position{}, errMalformedCustomID
	}

	col, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", entity.Position{}, errMalformedCustomID
	}

	return parts[1], entity.Position{Row: row, Col: col}, nil
}

func userMessage(err error) string {
	for _, known := range []error{
		apperror.ErrSessionNotFound,
		apperror.ErrPlayerInGame,
		apperror.ErrSelfPlay,
		apperror.ErrUnknownVariant,
		usecase.ErrManagerClosed,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "Something went wrong, try again later."
}
