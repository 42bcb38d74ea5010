package game

import "errors"

var (
	// ErrInvalidGame marks a game that failed to load; the engine stays disabled.
	ErrInvalidGame = errors.New("invalid game")

	// ErrGameTypeMismatch is returned when the loaded game is not a solo game.
	ErrGameTypeMismatch = errors.New("game type does not match")

	// ErrInvalidSettings is returned for settings the engine cannot run with.
	ErrInvalidSettings = errors.New("invalid game settings")

	// ErrNoPlayer is returned when the loaded game has no human player.
	ErrNoPlayer = errors.New("game has no human player")

	// ErrNotBound is returned when an operation needs a game id that is not set yet.
	ErrNotBound = errors.New("game id not bound")
)
