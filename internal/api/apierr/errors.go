package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/flipseven-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidPlayerCount = "INVALID_PLAYER_COUNT"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeRoundNotFound      = "ROUND_NOT_FOUND"
	CodeGameComplete       = "GAME_COMPLETE"
	CodeGameInProgress     = "GAME_IN_PROGRESS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError is an error already bound to a status and wire body
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

var internalError = &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}

// sentinels maps domain errors to responses; the first match wins
var sentinels = []struct {
	target error
	*httpError
}{
	{model.ErrGameNotFound, &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}},
	{model.ErrRoundNotFound, &httpError{http.StatusNotFound, APIError{CodeRoundNotFound, "Round not found"}}},
	{model.ErrGameComplete, &httpError{http.StatusConflict, APIError{CodeGameComplete, "Game is already complete"}}},
	{model.ErrGameInProgress, &httpError{http.StatusConflict, APIError{CodeGameInProgress, "A game is already being played in the lobby"}}},
	{model.ErrInsufficientPlayers, &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayerCount, "At least 2 players are needed"}}},
	{model.ErrTooManyPlayers, &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayerCount, "At most 8 players can sit at the table"}}},
}

// WriteError writes err as a JSON error body. Errors with no mapping are
// reported as a 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	he := lookup(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

func lookup(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	for _, s := range sentinels {
		if errors.Is(err, s.target) {
			return s.httpError
		}
	}
	return internalError
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return internalError
}
