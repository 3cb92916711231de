package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/mcoot/cardboard/internal/api/request"
	"github.com/mcoot/cardboard/internal/api/response"
	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/services/engine"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	engine *engine.Engine
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(engine *engine.Engine) *SessionHandler {
	return &SessionHandler{engine: engine}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.engine.ListSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	sessions := make([]response.SessionSummary, 0, len(summaries))
	for _, s := range summaries {
		sessions = append(sessions, response.SessionSummaryFromModel(s))
	}
	response.JSON(w, http.StatusOK, response.SessionList{Sessions: sessions})
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	session, err := h.engine.NewSession(r.Context(), req.Name, req.HostPassword)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/sessions/"+url.PathEscape(string(session.ID)), response.CreatedSession{
		ID:   string(session.ID),
		Name: session.Name,
	})
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	session, err := h.engine.Snapshot(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}

// SavedCards handles GET /api/v1/sessions/{id}/saved-cards
func (h *SessionHandler) SavedCards(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	if _, err := h.engine.Snapshot(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	saved, err := h.engine.SavedCards(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SavedCardListFromModel(saved))
}
