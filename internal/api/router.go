package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/flipseven-go/internal/api/handler"
	"github.com/mcoot/flipseven-go/internal/api/middleware"
	"github.com/mcoot/flipseven-go/internal/dependencies/random"
	"github.com/mcoot/flipseven-go/internal/services/game"
	"github.com/mcoot/flipseven-go/internal/services/lobby"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Storage         storage.Storage
	GameController  game.ControllerInterface
	LobbyController lobby.ControllerInterface
	Random          random.Random
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	historyHandler := handler.NewHistoryHandler(cfg.Storage)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Storage, cfg.Random)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// History routes
	api.HandleFunc("/rounds", historyHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rounds", historyHandler.Reset).Methods(http.MethodDelete)
	api.HandleFunc("/rounds/{id}", historyHandler.Get).Methods(http.MethodGet)

	// Game routes
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games", gameHandler.Simulate).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/rounds", gameHandler.Rounds).Methods(http.MethodGet)

	// Lobby status
	api.HandleFunc("/lobby", lobbyHandler.Get).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
