package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/services/engine"
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

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidCard        = "INVALID_CARD"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeCardNotFound       = "CARD_NOT_FOUND"
	CodeNotInSession       = "NOT_IN_SESSION"
	CodeNotHost            = "NOT_HOST"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeAlreadyStarted     = "ALREADY_STARTED"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrCardNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeCardNotFound, "Card not found"}}
	case errors.Is(err, model.ErrNotInSession):
		return &httpError{http.StatusConflict, APIError{CodeNotInSession, "Not in this session"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only a host can perform this action"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyStarted, "Session already started"}}
	case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, model.ErrNotActive):
		return &httpError{http.StatusConflict, APIError{CodeInvalidTransition, "Session is not in a state that allows this"}}
	case errors.Is(err, model.ErrInvalidCard):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCard, err.Error()}}
	case errors.Is(err, model.ErrInvalidTurnIndex), errors.Is(err, model.ErrInvalidParticipant):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, engine.ErrStopped):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeServiceUnavailable, "Server is shutting down"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
