package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gamebot/internal/entity"
)

type Recorder struct {
	logger      *slog.Logger
	sink        LeaderboardSink
	recordHouse bool
}

func NewRecorder(logger *slog.Logger, sink LeaderboardSink, recordHouse bool) *Recorder {
	return &Recorder{
		logger:      logger,
		sink:        sink,
		recordHouse: recordHouse,
	}
}

// Record submits one result per participant of a won or tied game and returns what it submitted.
// Sink failures are logged and do not stop the other submissions.
func (that *Recorder) Record(ctx context.Context, game *entity.Game) []entity.GameResult {
	log := that.logger.With("method", "Record", "gameID", game.ID)

	if game.Status != entity.StatusWon && game.Status != entity.StatusTied {
		log.Debug("nothing to record", "status", game.Status)
		return nil
	}

	finishedAt := game.UpdatedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}

	results := make([]entity.GameResult, 0, len(game.Players))
	for _, playerID := range game.Players {
		if game.IsHouse(playerID) && !that.recordHouse {
			continue
		}

		result := entity.GameResult{
			PlayerID:   playerID,
			OpponentID: game.Opponent(playerID),
			GameID:     game.ID,
			Variant:    game.Variant,
			Outcome:    game.OutcomeFor(playerID),
			Reason:     game.Reason,
			FinishedAt: finishedAt,
		}

		if err := that.sink.Submit(ctx, result); err != nil {
			log.Error("failed to submit result", "playerID", playerID, "error", err)
			continue
		}

		results = append(results, result)
	}

	log.Info("results recorded", "count", len(results), "status", game.Status, "winner", game.Winner)

	return results
}
