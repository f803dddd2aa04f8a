package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/flipseven-go/internal/api/apierr"
	"github.com/mcoot/flipseven-go/internal/api/response"
	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// HistoryHandler serves the round history log
type HistoryHandler struct {
	history storage.HistoryLog
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history storage.HistoryLog) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /api/v1/rounds, optionally filtered with ?game=<id>
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		records []*model.RoundRecord
		err     error
	)
	if gameID := r.URL.Query().Get("game"); gameID != "" {
		records, err = h.history.ListRoundsForGame(r.Context(), model.GameID(gameID))
	} else {
		records, err = h.history.ListRounds(r.Context())
	}
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoundListFromModel(records))
}

// Get handles GET /api/v1/rounds/{id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Round id must be a positive integer"))
		return
	}

	record, err := h.history.GetRound(r.Context(), model.RoundID(id))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoundFromModel(record))
}

// Reset handles DELETE /api/v1/rounds: empties the log, keeping games
func (h *HistoryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Reset(r.Context()); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
