package model

import "errors"

// Common errors used across the application
var (
	// Card errors
	ErrInvalidCard = errors.New("invalid card")

	// Round errors
	ErrScoreAlreadyFinalized = errors.New("round score already finalized")
	ErrPlayerNotFound        = errors.New("player not found")

	// Game errors
	ErrGameNotFound        = errors.New("game not found")
	ErrGameComplete        = errors.New("game is already complete")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")
	ErrTooManyPlayers      = errors.New("too many players")
	ErrRoundLimitReached   = errors.New("round limit reached without a winner")
	ErrInvalidDecision     = errors.New("invalid decision")

	// History errors
	ErrRoundNotFound = errors.New("round not found")

	// Lobby errors
	ErrMemberNotFound  = errors.New("lobby member not found")
	ErrInvalidName     = errors.New("invalid name")
	ErrNameRequired    = errors.New("a name is required first")
	ErrGameInProgress  = errors.New("game is in progress")
	ErrNotReadyToStart = errors.New("lobby is not ready to start")
)
