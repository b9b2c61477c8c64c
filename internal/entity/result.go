package entity

import "time"

const (
	OutcomeWon  = "won"
	OutcomeLost = "lost"
	OutcomeTied = "tied"
)

// GameResult is one participant's view of a finished game.
type GameResult struct {
	PlayerID   string    `json:"player_id"`
	OpponentID string    `json:"opponent_id"`
	GameID     string    `json:"game_id"`
	Variant    string    `json:"variant"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// PlayerStats aggregates a player's results.
type PlayerStats struct {
	PlayerID string `json:"player_id"`
	Won      int64  `json:"won"`
	Lost     int64  `json:"lost"`
	Tied     int64  `json:"tied"`
}

// RankEntry is one line of a variant's wins ranking.
type RankEntry struct {
	PlayerID string `json:"player_id"`
	Wins     int64  `json:"wins"`
}
