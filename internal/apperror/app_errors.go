package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrColumnFull      = errors.New("column is full")
	ErrInvalidPosition = errors.New("invalid position")

	ErrSessionNotFound = errors.New("game session not found")
	ErrPlayerInGame    = errors.New("player is already in a game")
	ErrSelfPlay        = errors.New("player can't play against themselves")
	ErrUnknownVariant  = errors.New("unknown game variant")
	ErrNotFound        = errors.New("not found")
)
