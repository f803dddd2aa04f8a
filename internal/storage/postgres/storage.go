package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface.
// Players are kept as a JSONB document per round.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and creates the tables if needed
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := &Storage{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close releases the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// History operations

func (s *Storage) AppendRound(ctx context.Context, rec *model.RoundRecord) (model.RoundID, error) {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return 0, err
	}

	var id int64
	// The exclusive lock serialises ID assignment between writers
	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE flip7_rounds IN EXCLUSIVE MODE`); err != nil {
			return err
		}
		return tx.QueryRow(ctx, insertRoundQ,
			string(rec.GameID), rec.RoundNumber, rec.Date, rec.NumPlayers, string(players),
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert round: %w", err)
	}

	rec.ID = model.RoundID(id)
	return rec.ID, nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.RoundRecord, error) {
	row := s.pool.QueryRow(ctx, selectRoundColumns+` WHERE id = $1`, int64(id))
	rec, err := scanRound(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrRoundNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Storage) ListRounds(ctx context.Context) ([]*model.RoundRecord, error) {
	rows, err := s.pool.Query(ctx, selectRoundColumns+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectRounds(rows)
}

func (s *Storage) ListRoundsForGame(ctx context.Context, gameID model.GameID) ([]*model.RoundRecord, error) {
	rows, err := s.pool.Query(ctx, selectRoundColumns+` WHERE game_id = $1 ORDER BY id`, string(gameID))
	if err != nil {
		return nil, err
	}
	return collectRounds(rows)
}

func (s *Storage) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE flip7_rounds`)
	return err
}

func collectRounds(rows pgx.Rows) ([]*model.RoundRecord, error) {
	defer rows.Close()
	rounds := []*model.RoundRecord{}
	for rows.Next() {
		rec, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, rec)
	}
	return rounds, rows.Err()
}

func scanRound(row pgx.Row) (*model.RoundRecord, error) {
	var (
		rec     model.RoundRecord
		id      int64
		gameID  string
		players []byte
	)
	if err := row.Scan(&id, &gameID, &rec.RoundNumber, &rec.Date, &rec.NumPlayers, &players); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(players, &rec.Players); err != nil {
		return nil, fmt.Errorf("decoding round %d: %w", id, err)
	}
	rec.ID = model.RoundID(id)
	rec.GameID = model.GameID(gameID)
	rec.Date = rec.Date.UTC()
	return &rec, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, upsertGameQ, string(game.ID), game.CreatedAt, string(data))
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM flip7_games WHERE id = $1`, string(id)).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM flip7_games ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []*model.Game{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var game model.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}
	return games, rows.Err()
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM flip7_games WHERE id = $1`, string(id))
	return err
}
