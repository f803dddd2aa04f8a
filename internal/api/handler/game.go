package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/flipseven-go/internal/api/apierr"
	"github.com/mcoot/flipseven-go/internal/api/request"
	"github.com/mcoot/flipseven-go/internal/api/response"
	"github.com/mcoot/flipseven-go/internal/dependencies/random"
	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/bot"
	"github.com/mcoot/flipseven-go/internal/services/game"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	gameController game.ControllerInterface
	storage        storage.Storage
	random         random.Random
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController game.ControllerInterface, store storage.Storage, rnd random.Random) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		storage:        store,
		random:         rnd,
	}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.storage.ListGames(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.GameList{Games: make([]response.Game, len(games))}
	for i, g := range games {
		resp.Games[i] = response.GameFromModel(g)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.gameController.GetGame(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Rounds handles GET /api/v1/games/{id}/rounds
func (h *GameHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	records, err := h.gameController.GetRounds(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoundListFromModel(records))
}

// Simulate handles POST /api/v1/games: bots play a whole game
func (h *GameHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req request.SimulateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.Strategy == "" {
		req.Strategy = bot.StrategyThreshold
	}

	strategy, err := bot.NewStrategy(req.Strategy, h.random, req.Threshold)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	g, err := h.gameController.NewGame(r.Context(), req.Players)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	summary, err := h.gameController.PlayGame(r.Context(), g.ID, strategy, nil)
	if err != nil && !errors.Is(err, model.ErrRoundLimitReached) {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameSummaryFromModel(summary))
}
