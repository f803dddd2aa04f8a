package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// History operations

func (s *Storage) AppendRound(ctx context.Context, rec *model.RoundRecord) (model.RoundID, error) {
	next, err := s.client.Incr(ctx, roundCounterKey()).Result()
	if err != nil {
		return 0, err
	}

	stored := *rec
	stored.ID = model.RoundID(next)
	data, err := json.Marshal(&stored)
	if err != nil {
		return 0, err
	}

	key := roundKey(stored.ID)

	// Record and indexes land together
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.RPush(ctx, roundsIndexKey(), key)
		if stored.GameID != "" {
			pipe.ZAdd(ctx, roundsForGameIndexKey(stored.GameID), redis.Z{Score: float64(stored.ID), Member: key})
			pipe.SAdd(ctx, roundGamesIndexKey(), string(stored.GameID))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	rec.ID = stored.ID
	return stored.ID, nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.RoundRecord, error) {
	data, err := s.client.Get(ctx, roundKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoundNotFound
		}
		return nil, err
	}

	var rec model.RoundRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Storage) ListRounds(ctx context.Context) ([]*model.RoundRecord, error) {
	keys, err := s.client.LRange(ctx, roundsIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.getRounds(ctx, keys)
}

func (s *Storage) ListRoundsForGame(ctx context.Context, gameID model.GameID) ([]*model.RoundRecord, error) {
	keys, err := s.client.ZRange(ctx, roundsForGameIndexKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.getRounds(ctx, keys)
}

// getRounds fetches records by key in one MGET, keeping key order
func (s *Storage) getRounds(ctx context.Context, keys []string) ([]*model.RoundRecord, error) {
	if len(keys) == 0 {
		return []*model.RoundRecord{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	rounds := make([]*model.RoundRecord, 0, len(values))
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted underneath the index
		}
		var rec model.RoundRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", keys[i], err)
		}
		rounds = append(rounds, &rec)
	}
	return rounds, nil
}

func (s *Storage) Reset(ctx context.Context) error {
	keys, err := s.client.LRange(ctx, roundsIndexKey(), 0, -1).Result()
	if err != nil {
		return err
	}
	gameIDs, err := s.client.SMembers(ctx, roundGamesIndexKey()).Result()
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, key)
		}
		for _, id := range gameIDs {
			pipe.Del(ctx, roundsForGameIndexKey(model.GameID(id)))
		}
		pipe.Del(ctx, roundsIndexKey(), roundGamesIndexKey(), roundCounterKey())
		return nil
	})
	return err
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	pipe.ZAdd(ctx, gamesIndexKey(), redis.Z{Score: float64(game.CreatedAt.UnixMilli()), Member: string(game.ID)})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	ids, err := s.client.ZRange(ctx, gamesIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Game may have expired
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			continue // Skip invalid data
		}
		games = append(games, &game)
	}
	return games, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.ZRem(ctx, gamesIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}
