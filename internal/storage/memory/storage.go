package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rounds []*model.RoundRecord
	games  map[model.GameID]*model.Game
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games: make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// History operations

func (s *Storage) AppendRound(ctx context.Context, rec *model.RoundRecord) (model.RoundID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = model.RoundID(len(s.rounds) + 1)
	stored := *rec
	s.rounds = append(s.rounds, &stored)
	return rec.ID, nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 1 || int(id) > len(s.rounds) {
		return nil, model.ErrRoundNotFound
	}
	rec := *s.rounds[id-1]
	return &rec, nil
}

func (s *Storage) ListRounds(ctx context.Context) ([]*model.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.RoundRecord, 0, len(s.rounds))
	for _, r := range s.rounds {
		rec := *r
		out = append(out, &rec)
	}
	return out, nil
}

func (s *Storage) ListRoundsForGame(ctx context.Context, gameID model.GameID) ([]*model.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*model.RoundRecord{}
	for _, r := range s.rounds {
		if r.GameID == gameID {
			rec := *r
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (s *Storage) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds = nil
	return nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *game
	stored.Seats = append([]model.Seat(nil), game.Seats...)
	s.games[game.ID] = &stored
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	out := *game
	out.Seats = append([]model.Seat(nil), game.Seats...)
	return &out, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Game, 0, len(s.games))
	for _, g := range s.games {
		game := *g
		game.Seats = append([]model.Seat(nil), g.Seats...)
		out = append(out, &game)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}
