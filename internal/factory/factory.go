package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/flipseven-go/internal/dependencies/clock"
	"github.com/mcoot/flipseven-go/internal/dependencies/random"
	"github.com/mcoot/flipseven-go/internal/services/game"
	"github.com/mcoot/flipseven-go/internal/services/lobby"
	"github.com/mcoot/flipseven-go/internal/services/scoring"
	"github.com/mcoot/flipseven-go/internal/storage"
	filestorage "github.com/mcoot/flipseven-go/internal/storage/file"
	"github.com/mcoot/flipseven-go/internal/storage/memory"
	pgstorage "github.com/mcoot/flipseven-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/flipseven-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeFile     = "file"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// StorageTypes lists the accepted StorageType values
var StorageTypes = []string{StorageTypeMemory, StorageTypeFile, StorageTypeRedis, StorageTypePostgres}

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	ScoringService  *scoring.Service
	GameController  *game.Controller
	LobbyController *lobby.Controller

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the history backend: memory, file, redis or postgres
	// If empty, defaults to "memory"
	StorageType string
	// HistoryFile is the JSON file used when StorageType is "file"
	// If empty, defaults to games.json in the working directory
	HistoryFile string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds Postgres settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// Seed makes shuffles reproducible when non-zero
	Seed uint64
	// TargetScore ends a game; zero means model.DefaultTargetScore
	TargetScore int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.Seed != 0 {
		rnd = random.NewSeeded(cfg.Seed)
	}

	return newWithDependencies(store, clk, rnd, cfg.TargetScore, logger), nil
}

func newStorage(cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		return filestorage.New(cfg.HistoryFile, logger)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(context.Background(), *cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be one of %v", storageType, StorageTypes)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, targetScore int, logger *slog.Logger) *App {
	scoringService := scoring.New(targetScore)
	gameController := game.NewController(store, scoringService, clk, rnd, logger)
	lobbyController := lobby.NewController(gameController, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		ScoringService:  scoringService,
		GameController:  gameController,
		LobbyController: lobbyController,
		Logger:          logger,
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
