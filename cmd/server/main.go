package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/flipseven-go/internal/api"
	"github.com/mcoot/flipseven-go/internal/factory"
	pgstorage "github.com/mcoot/flipseven-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/flipseven-go/internal/storage/redis"
	"github.com/mcoot/flipseven-go/internal/transport/tcp"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(logger *slog.Logger) error {
	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		HistoryFile: os.Getenv("HISTORY_FILE"),
		TargetScore: envInt(logger, "TARGET_SCORE", 0),
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			return errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = databaseURL
		cfg.PostgresConfig = &pgCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Storage:         app.Storage,
		GameController:  app.GameController,
		LobbyController: app.LobbyController,
		Random:          app.Random,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = envInt(logger, "HTTP_PORT", serverConfig.Port)
	httpServer := api.NewServer(mux, serverConfig, logger)

	lobbyConfig := tcp.DefaultServerConfig()
	if addr := os.Getenv("LOBBY_ADDR"); addr != "" {
		lobbyConfig.Addr = addr
	}
	lobbyServer := tcp.NewServer(lobbyConfig, app.LobbyController, app.GameController, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(httpServer.Start)
	g.Go(lobbyServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		// Shutdown gets a fresh context: ctx is already done
		return errors.Join(
			lobbyServer.Shutdown(context.Background()),
			httpServer.Shutdown(context.Background()),
		)
	})

	return g.Wait()
}

// envInt reads a positive integer setting, falling back on a missing or bad value
func envInt(logger *slog.Logger, key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logger.Warn("ignoring invalid setting", slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return n
}
