package handler

import (
	"net/http"

	"github.com/mcoot/flipseven-go/internal/api/response"
	"github.com/mcoot/flipseven-go/internal/services/lobby"
)

// LobbyHandler exposes the TCP lobby's state
type LobbyHandler struct {
	lobbyController lobby.ControllerInterface
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobbyController lobby.ControllerInterface) *LobbyHandler {
	return &LobbyHandler{lobbyController: lobbyController}
}

// Get handles GET /api/v1/lobby
func (h *LobbyHandler) Get(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.LobbyFromModel(h.lobbyController.GetLobby()))
}
