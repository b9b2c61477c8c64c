package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gamebot/internal/entity"
)

const (
	resultsPrefix = "results:"
	statsPrefix   = "stats:"
	rankPrefix    = "leaderboard:"
)

// LeaderboardRepository is append-only on the write side: every result is pushed to the
// player's history and counted, wins also feed the per-variant ranking.
type LeaderboardRepository interface {
	Submit(ctx context.Context, result entity.GameResult) error
	Stats(ctx context.Context, playerID string) (*entity.PlayerStats, error)
	History(ctx context.Context, playerID string, limit int64) ([]entity.GameResult, error)
	Top(ctx context.Context, variant string, limit int64) ([]entity.RankEntry, error)
}

type dbLeaderboard struct {
	client *redis.Client
}

func NewLeaderboardRepository(client *redis.Client) LeaderboardRepository {
	return &dbLeaderboard{
		client: client,
	}
}

func (that *dbLeaderboard) Submit(ctx context.Context, result entity.GameResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, resultsPrefix+result.PlayerID, resultJSON)
		pipe.HIncrBy(ctx, statsPrefix+result.PlayerID, result.Outcome, 1)

		if result.Outcome == entity.OutcomeWon {
			pipe.ZIncrBy(ctx, rankPrefix+result.Variant, 1, result.PlayerID)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to submit result: %w", err)
	}

	return nil
}

// Stats returns zero counters for a player without results.
func (that *dbLeaderboard) Stats(ctx context.Context, playerID string) (*entity.PlayerStats, error) {
	counters, err := that.client.HGetAll(ctx, statsPrefix+playerID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	stats := &entity.PlayerStats{PlayerID: playerID}
	for outcome, target := range map[string]*int64{
		entity.OutcomeWon:  &stats.Won,
		entity.OutcomeLost: &stats.Lost,
		entity.OutcomeTied: &stats.Tied,
	} {
		raw, ok := counters[outcome]
		if !ok {
			continue
		}

		if *target, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("failed to parse %s counter: %w", outcome, err)
		}
	}

	return stats, nil
}

// History returns up to limit of the player's latest results, oldest first.
func (that *dbLeaderboard) History(ctx context.Context, playerID string, limit int64) ([]entity.GameResult, error) {
	raw, err := that.client.LRange(ctx, resultsPrefix+playerID, -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	results := make([]entity.GameResult, 0, len(raw))
	for _, item := range raw {
		var result entity.GameResult
		if err = json.Unmarshal([]byte(item), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}

		results = append(results, result)
	}

	return results, nil
}

func (that *dbLeaderboard) Top(ctx context.Context, variant string, limit int64) ([]entity.RankEntry, error) {
	members, err := that.client.ZRevRangeWithScores(ctx, rankPrefix+variant, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}

	ranking := make([]entity.RankEntry, 0, len(members))
	for _, member := range members {
		playerID, ok := member.Member.(string)
		if !ok {
			continue
		}

		ranking = append(ranking, entity.RankEntry{PlayerID: playerID, Wins: int64(member.Score)})
	}

	return ranking, nil
}
