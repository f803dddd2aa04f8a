// Package file stores history in a single JSON document, compatible with the
// games.json files written by earlier versions of the game
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// DefaultPath is the history file used when none is configured
const DefaultPath = "games.json"

// document is the on-disk layout. "games" holds rounds, for compatibility.
type document struct {
	Rounds  []*model.RoundRecord `json:"games"`
	Matches []*model.Game        `json:"matches,omitempty"`
}

// Storage is a JSON-file-backed implementation of the storage interface.
// The whole document is rewritten atomically after every change.
type Storage struct {
	mu     sync.RWMutex
	path   string
	doc    document
	logger *slog.Logger
}

// New opens the history file at path. A missing or unreadable document
// starts an empty history rather than failing.
func New(path string, logger *slog.Logger) (*Storage, error) {
	if path == "" {
		path = DefaultPath
	}

	s := &Storage{
		path:   path,
		logger: logger.With(slog.String("component", "file-storage"), slog.String("path", path)),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Path returns the history file location
func (s *Storage) Path() string {
	return s.path
}

// Close is a no-op; every change is already on disk
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("starting new history file")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading history file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("history file unreadable, starting empty", slog.String("error", err.Error()))
		return nil
	}
	s.doc = doc
	return nil
}

// persist writes the document to a temporary file and renames it into place
func (s *Storage) persist() error {
	doc := s.doc
	if doc.Rounds == nil {
		doc.Rounds = []*model.RoundRecord{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	return nil
}

// History operations

func (s *Storage) AppendRound(ctx context.Context, rec *model.RoundRecord) (model.RoundID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	stored.ID = model.RoundID(len(s.doc.Rounds) + 1)
	s.doc.Rounds = append(s.doc.Rounds, &stored)

	if err := s.persist(); err != nil {
		s.doc.Rounds = s.doc.Rounds[:len(s.doc.Rounds)-1]
		return 0, err
	}

	rec.ID = stored.ID
	s.logger.Debug("round saved", slog.Int64("round_id", int64(stored.ID)))
	return stored.ID, nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.doc.Rounds {
		if r.ID == id {
			rec := *r
			return &rec, nil
		}
	}
	return nil, model.ErrRoundNotFound
}

func (s *Storage) ListRounds(ctx context.Context) ([]*model.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.RoundRecord, 0, len(s.doc.Rounds))
	for _, r := range s.doc.Rounds {
		rec := *r
		out = append(out, &rec)
	}
	return out, nil
}

func (s *Storage) ListRoundsForGame(ctx context.Context, gameID model.GameID) ([]*model.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*model.RoundRecord{}
	for _, r := range s.doc.Rounds {
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
	previous := s.doc.Rounds
	s.doc.Rounds = nil
	if err := s.persist(); err != nil {
		s.doc.Rounds = previous
		return err
	}
	return nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *game
	stored.Seats = append([]model.Seat(nil), game.Seats...)

	previous := s.doc.Matches
	replaced := false
	matches := make([]*model.Game, 0, len(previous)+1)
	for _, g := range previous {
		if g.ID == game.ID {
			matches = append(matches, &stored)
			replaced = true
			continue
		}
		matches = append(matches, g)
	}
	if !replaced {
		matches = append(matches, &stored)
	}

	s.doc.Matches = matches
	if err := s.persist(); err != nil {
		s.doc.Matches = previous
		return err
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.doc.Matches {
		if g.ID == id {
			game := *g
			game.Seats = append([]model.Seat(nil), g.Seats...)
			return &game, nil
		}
	}
	return nil, model.ErrGameNotFound
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Game, 0, len(s.doc.Matches))
	for _, g := range s.doc.Matches {
		game := *g
		game.Seats = append([]model.Seat(nil), g.Seats...)
		out = append(out, &game)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.doc.Matches
	matches := make([]*model.Game, 0, len(previous))
	for _, g := range previous {
		if g.ID != id {
			matches = append(matches, g)
		}
	}
	if len(matches) == len(previous) {
		return nil
	}

	s.doc.Matches = matches
	if err := s.persist(); err != nil {
		s.doc.Matches = previous
		return err
	}
	return nil
}
