// Package realtime carries the session protocol over websockets. Each
// connection gets a read loop that dispatches frames to the engine in
// arrival order, and a write loop fed by a bounded queue.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/cardboard/internal/dependencies/uuid"
	"github.com/mcoot/cardboard/internal/metrics"
	"github.com/mcoot/cardboard/internal/protocol"
	"github.com/mcoot/cardboard/internal/services/engine"
)

// Config holds configuration for the websocket transport
type Config struct {
	// MessageRate is the sustained number of frames per second a connection may send
	MessageRate float64
	// MessageBurst is how many frames may arrive at once
	MessageBurst int
	// AllowedOrigin restricts the Origin header when set
	AllowedOrigin string
	// SendBufferSize is the number of outgoing frames queued per connection
	SendBufferSize int
}

// DefaultConfig returns default transport configuration
func DefaultConfig() Config {
	return Config{
		MessageRate:    50,
		MessageBurst:   100,
		SendBufferSize: 256,
	}
}

// Handler upgrades HTTP requests to websocket connections
type Handler struct {
	engine   *engine.Engine
	hubs     *HubManager
	uuid     uuid.UUID
	recorder metrics.Recorder
	cfg      Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(
	engine *engine.Engine,
	hubs *HubManager,
	uuid uuid.UUID,
	recorder metrics.Recorder,
	cfg Config,
	logger *slog.Logger,
) *Handler {
	defaults := DefaultConfig()
	if cfg.MessageRate <= 0 {
		cfg.MessageRate = defaults.MessageRate
	}
	if cfg.MessageBurst <= 0 {
		cfg.MessageBurst = defaults.MessageBurst
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaults.SendBufferSize
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	h := &Handler{
		engine:   engine,
		hubs:     hubs,
		uuid:     uuid,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "websocket")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.cfg.AllowedOrigin == "" {
		return true
	}
	return r.Header.Get("Origin") == h.cfg.AllowedOrigin
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(protocol.ConnID(h.uuid.NewUUID()), ws, h.cfg, h.logger)
	h.hubs.Attach(client)
	h.recorder.ConnectionOpened()
	client.logger.Info("websocket connected", slog.String("remote_addr", r.RemoteAddr))

	go client.writePump()
	h.readPump(r.Context(), client)

	h.hubs.Detach(client.id)
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	if err := h.engine.Disconnect(cleanupCtx, client.id); err != nil {
		client.logger.Warn("disconnect failed", slog.Any("error", err))
	}
	client.close()
	h.recorder.ConnectionClosed()
	client.logger.Info("websocket disconnected",
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
	)
}

// readPump reads frames until the connection fails, dispatching each in order
func (h *Handler) readPump(ctx context.Context, c *Client) {
	defer func() {
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", slog.Any("error", err))
			}
			return
		}

		if !c.limiter.Allow() {
			h.recorder.MessageDropped("rate_limited")
			c.Send(protocol.NewServerMessage("rate limit exceeded, message dropped"))
			continue
		}

		var in protocol.InMsg
		if err := json.Unmarshal(data, &in); err != nil {
			c.Send(protocol.NewServerMessage("invalid json"))
			continue
		}

		h.dispatch(ctx, c, in)
	}
}
