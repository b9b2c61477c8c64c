package discord

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"

	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/transport/render"
)

// maxButtonsPerRow is Discord's limit for one action row.
const maxButtonsPerRow = 5

var (
	discSymbols = render.Symbols{Empty: "⚫", PlayerA: "🔴", PlayerB: "🟡"}
	cellSymbols = render.Symbols{Empty: "➖", PlayerA: "❌", PlayerB: "⭕"}
)

// Render redraws the game's board message. Snapshots older than the last one drawn are skipped.
func (that *Bot) Render(_ context.Context, game *entity.Game) error {
	if that.rest == nil {
		return errNotReady
	}

	ref, ok := that.boardOf(game.ID)
	if !ok {
		// not posted yet; onCommand refreshes once it is
		return nil
	}

	ref.mu.Lock()
	defer ref.mu.Unlock()

	if game.MoveCount < ref.moveCount || (game.MoveCount == ref.moveCount && ref.finished) {
		return nil
	}

	message := buildMessage(game, that.mention(game))

	_, err := that.rest.UpdateMessage(ref.channelID, ref.messageID, discord.NewMessageUpdateBuilder().
		SetIsComponentsV2(true).
		SetComponents(message.Components...).
		Build())
	if err != nil {
		return fmt.Errorf("failed to update board message: %w", err)
	}

	ref.moveCount = game.MoveCount
	ref.finished = game.IsFinished()

	if ref.finished {
		that.unbind(game)
	}

	return nil
}

// Notice posts a mention in the channel of the player's game.
func (that *Bot) Notice(_ context.Context, playerID, message string) error {
	if that.rest == nil {
		return errNotReady
	}

	ref, ok := that.boardOfPlayer(playerID)
	if !ok {
		return fmt.Errorf("player %s has no board", playerID)
	}

	_, err := that.rest.CreateMessage(ref.channelID, discord.NewMessageCreateBuilder().
		SetContent(fmt.Sprintf("<@%s> %s", playerID, message)).
		Build())
	if err != nil {
		return fmt.Errorf("failed to send notice: %w", err)
	}

	return nil
}

func (that *Bot) mention(game *entity.Game) render.Namer {
	return func(playerID string) string {
		if game.IsHouse(playerID) {
			return "the house"
		}
		return "<@" + playerID + ">"
	}
}

// buildMessage draws drop boards as text with column buttons and free boards as a button grid.
func buildMessage(game *entity.Game, name render.Namer) discord.MessageCreate {
	var components []discord.LayoutComponent

	if game.Board.DropMode {
		components = append(components,
			discord.NewTextDisplay(render.Status(game, discSymbols, name)),
			discord.NewTextDisplay(render.Grid(game.Board, discSymbols)),
		)
		if game.IsOngoing() {
			components = append(components, discord.NewSeparator(discord.SeparatorSpacingSizeSmall).WithDivider(true))
			components = append(components, columnButtons(game)...)
		}
	} else {
		components = append(components, discord.NewTextDisplay(render.Status(game, cellSymbols, name)))
		components = append(components, cellButtons(game)...)
	}

	return discord.NewMessageCreateBuilder().
		SetIsComponentsV2(true).
		AddComponents(components...).
		Build()
}

func columnButtons(game *entity.Game) []discord.LayoutComponent {
	var rows []discord.LayoutComponent

	for start := 0; start < game.Board.Cols; start += maxButtonsPerRow {
		var buttons []discord.InteractiveComponent
		for col := start; col < min(start+maxButtonsPerRow, game.Board.Cols); col++ {
			pos := entity.Position{Col: col}
			btn := discord.NewButton(discord.ButtonStylePrimary, fmt.Sprint(col+1), customID(game.ID, pos), "", 0)
			if !game.Board.CanPlace(pos) {
				btn = btn.WithDisabled(true)
			}
			buttons = append(buttons, btn)
		}
		rows = append(rows, discord.NewActionRow(buttons...))
	}

	return rows
}

// cellButtons makes one button per cell; the whole grid is disabled once the game is over.
func cellButtons(game *entity.Game) []discord.LayoutComponent {
	rows := make([]discord.LayoutComponent, 0, game.Board.Rows)

	for row := range game.Board.Rows {
		buttons := make([]discord.InteractiveComponent, 0, game.Board.Cols)
		for col := range game.Board.Cols {
			pos := entity.Position{Row: row, Col: col}
			mark := game.Board.At(row, col)

			style := discord.ButtonStyleSecondary
			if game.LastMove != nil && *game.LastMove == pos {
				style = discord.ButtonStyleSuccess
			}

			btn := discord.NewButton(style, cellSymbols.Of(mark), customID(game.ID, pos), "", 0)
			if mark != entity.Empty || !game.IsOngoing() {
				btn = btn.WithDisabled(true)
			}
			buttons = append(buttons, btn)
		}
		rows = append(rows, discord.NewActionRow(buttons...))
	}

	return rows
}
