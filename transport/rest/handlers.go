package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/entity"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Handlers interface {
	Ping(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	GetActiveGame(w http.ResponseWriter, r *http.Request)
	GetLeaderboard(w http.ResponseWriter, r *http.Request)
	GetPlayerStats(w http.ResponseWriter, r *http.Request)
	GetPlayerHistory(w http.ResponseWriter, r *http.Request)
}

type gameReader interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	ActiveGameOf(ctx context.Context, playerID string) (*entity.Game, error)
	Variants() []string
}

type leaderboardReader interface {
	Stats(ctx context.Context, playerID string) (*entity.PlayerStats, error)
	History(ctx context.Context, playerID string, limit int64) ([]entity.GameResult, error)
	Top(ctx context.Context, variant string, limit int64) ([]entity.RankEntry, error)
}

type handlers struct {
	logger      *slog.Logger
	games       gameReader
	leaderboard leaderboardReader
}

func NewHandlers(logger *slog.Logger, games gameReader, leaderboard leaderboardReader) Handlers {
	return &handlers{
		logger:      logger,
		games:       games,
		leaderboard: leaderboard,
	}
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetGame", err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (that *handlers) GetActiveGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.ActiveGameOf(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetActiveGame", err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// GetLeaderboard defaults to the first known variant when none is asked for.
func (that *handlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	variant := r.URL.Query().Get("variant")
	if variant == "" {
		variant = that.games.Variants()[0]
	}

	if !slices.Contains(that.games.Variants(), variant) {
		that.writeError(w, "GetLeaderboard", apperror.ErrUnknownVariant)
		return
	}

	ranking, err := that.leaderboard.Top(r.Context(), variant, limitParam(r))
	if err != nil {
		that.writeError(w, "GetLeaderboard", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"variant": variant,
		"ranking": ranking,
	})
}

func (that *handlers) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.leaderboard.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetPlayerStats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (that *handlers) GetPlayerHistory(w http.ResponseWriter, r *http.Request) {
	history, err := that.leaderboard.History(r.Context(), chi.URLParam(r, "id"), limitParam(r))
	if err != nil {
		that.writeError(w, "GetPlayerHistory", err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, apperror.ErrUnknownVariant):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func limitParam(r *http.Request) int64 {
	limit, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if err != nil || limit <= 0 {
		return defaultLimit
	}

	return min(limit, maxLimit)
}
