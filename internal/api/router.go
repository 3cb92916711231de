package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/cardboard/internal/api/handler"
	"github.com/mcoot/cardboard/internal/api/middleware"
	basemiddleware "github.com/mcoot/cardboard/internal/middleware"
	"github.com/mcoot/cardboard/internal/services/engine"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger *slog.Logger
	Engine *engine.Engine
	// Websocket serves GET /ws
	Websocket http.Handler
	// Metrics serves GET /metrics; omitted when nil
	Metrics       http.Handler
	AllowedOrigin string
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	// The API subrouter answers panics as JSON; the remaining routes get a plain 500
	recoverPlain := basemiddleware.Recovery(cfg.Logger, basemiddleware.DefaultPanicHandler)

	sessionHandler := handler.NewSessionHandler(cfg.Engine)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.AllowOrigin(cfg.AllowedOrigin))

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	api.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/saved-cards", sessionHandler.SavedCards).Methods(http.MethodGet, http.MethodOptions)

	if cfg.Websocket != nil {
		r.Handle("/ws", recoverPlain(cfg.Websocket)).Methods(http.MethodGet)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", recoverPlain(cfg.Metrics)).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
