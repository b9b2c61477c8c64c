package entity

// Player tracks which live game a participant is seated in. An empty GameID means the player is free.
type Player struct {
	ID     string `json:"id"`
	GameID string `json:"game_id,omitempty"`
}
