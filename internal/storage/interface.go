package storage

import (
	"context"

	"github.com/mcoot/flipseven-go/internal/model"
)

// HistoryLog is the durable, append-only record of completed rounds
type HistoryLog interface {
	// AppendRound stores rec, assigning it the next sequential ID (starting
	// at 1). The assigned ID is also written to rec.ID.
	AppendRound(ctx context.Context, rec *model.RoundRecord) (model.RoundID, error)
	GetRound(ctx context.Context, id model.RoundID) (*model.RoundRecord, error)
	// ListRounds returns every round in append order
	ListRounds(ctx context.Context) ([]*model.RoundRecord, error)
	ListRoundsForGame(ctx context.Context, gameID model.GameID) ([]*model.RoundRecord, error)
	// Reset empties the log and restarts IDs at 1
	Reset(ctx context.Context) error
}

// Storage defines the interface for data persistence
type Storage interface {
	HistoryLog

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error

	Close() error
}
