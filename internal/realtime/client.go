package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Time between keepalive pings; must be less than pongWait
	pingPeriod = 30 * time.Second

	// Largest frame accepted from a client
	maxMessageSize = 1 << 20
)

// Client is one websocket connection
type Client struct {
	id          protocol.ConnID
	ws          *websocket.Conn
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	limiter     *rate.Limiter
	connectedAt time.Time
	logger      *slog.Logger

	// guarded by HubManager.mu
	sessionID model.SessionID
}

func newClient(id protocol.ConnID, ws *websocket.Conn, cfg Config, logger *slog.Logger) *Client {
	return &Client{
		id:          id,
		ws:          ws,
		send:        make(chan []byte, cfg.SendBufferSize),
		done:        make(chan struct{}),
		limiter:     rate.NewLimiter(rate.Limit(cfg.MessageRate), cfg.MessageBurst),
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("conn_id", string(id))),
	}
}

// ID returns the connection id
func (c *Client) ID() protocol.ConnID {
	return c.id
}

// Send queues msg for this connection only
func (c *Client) Send(msg protocol.OutMsg) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to encode message", slog.String("type", msg.Type), slog.Any("error", err))
		return
	}
	if !c.enqueue(data) {
		c.logger.Warn("message dropped - client buffer full", slog.String("type", msg.Type))
	}
}

// enqueue never blocks; it reports false when the queue is full
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the write pump
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump drains the send queue to the socket and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
