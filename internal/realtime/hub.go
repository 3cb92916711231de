package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/cardboard/internal/metrics"
	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/protocol"
	"github.com/mcoot/cardboard/internal/services/engine"
)

// Hub holds the connections joined to a single session
type Hub struct {
	sessionID model.SessionID
	clients   map[protocol.ConnID]*Client
}

func newHub(sessionID model.SessionID) *Hub {
	return &Hub{
		sessionID: sessionID,
		clients:   make(map[protocol.ConnID]*Client),
	}
}

// HubManager tracks every open connection and the session hub it belongs to.
// It is the engine's Publisher.
type HubManager struct {
	mu       sync.RWMutex
	clients  map[protocol.ConnID]*Client
	hubs     map[model.SessionID]*Hub
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Ensure HubManager implements engine.Publisher
var _ engine.Publisher = (*HubManager)(nil)

// NewHubManager creates a new HubManager
func NewHubManager(recorder metrics.Recorder, logger *slog.Logger) *HubManager {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &HubManager{
		clients:  make(map[protocol.ConnID]*Client),
		hubs:     make(map[model.SessionID]*Hub),
		recorder: recorder,
		logger:   logger.With(slog.String("component", "realtime")),
	}
}

// Attach makes a connection known to the manager. It receives nothing until subscribed.
func (m *HubManager) Attach(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.id] = client
}

// Detach forgets a connection and removes it from its hub
func (m *HubManager) Detach(conn protocol.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeFromHub(conn)
	delete(m.clients, conn)
}

// Subscribe moves the connection into the session's hub
func (m *HubManager) Subscribe(conn protocol.ConnID, sessionID model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients[conn]
	if !ok {
		return
	}
	if client.sessionID == sessionID {
		return
	}
	m.removeFromHub(conn)

	hub, ok := m.hubs[sessionID]
	if !ok {
		hub = newHub(sessionID)
		m.hubs[sessionID] = hub
	}
	hub.clients[conn] = client
	client.sessionID = sessionID

	m.logger.Debug("connection subscribed",
		slog.String("conn_id", string(conn)),
		slog.String("session_id", string(sessionID)),
		slog.Int("total_clients", len(hub.clients)),
	)
}

// Unsubscribe removes the connection from its hub
func (m *HubManager) Unsubscribe(conn protocol.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeFromHub(conn)
}

// Publish sends msg to every connection in the session except exclude.
// A connection whose queue is full misses the message.
func (m *HubManager) Publish(sessionID model.SessionID, exclude protocol.ConnID, msg protocol.OutMsg) {
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("failed to encode message",
			slog.String("type", msg.Type),
			slog.Any("error", err),
		)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hub, ok := m.hubs[sessionID]
	if !ok {
		return
	}
	sentCount := 0
	droppedCount := 0
	for id, client := range hub.clients {
		if id == exclude {
			continue
		}
		if client.enqueue(data) {
			sentCount++
			continue
		}
		droppedCount++
		m.recorder.MessageDropped("queue_full")
		m.logger.Warn("message dropped - client buffer full",
			slog.String("conn_id", string(id)),
			slog.String("type", msg.Type),
		)
	}
	if droppedCount > 0 {
		m.logger.Warn("broadcast partial failure",
			slog.String("session_id", string(sessionID)),
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount),
		)
	}
}

// ClientCount returns the number of connections subscribed to a session
func (m *HubManager) ClientCount(sessionID model.SessionID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hub, ok := m.hubs[sessionID]
	if !ok {
		return 0
	}
	return len(hub.clients)
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for id, hub := range m.hubs {
		if len(hub.clients) == 0 {
			delete(m.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("empty hubs cleaned up", slog.Int("removed", removedCount))
	}
}

// CloseAll asks every connection to close. Used on server shutdown, which
// does not wait for hijacked connections.
func (m *HubManager) CloseAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		client.close()
	}
	if len(m.clients) > 0 {
		m.logger.Info("closing connections", slog.Int("count", len(m.clients)))
	}
}

// RunCleanup calls CleanupEmptyHubs every interval until ctx is cancelled
func (m *HubManager) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupEmptyHubs()
		}
	}
}

// removeFromHub must be called with mu held
func (m *HubManager) removeFromHub(conn protocol.ConnID) {
	client, ok := m.clients[conn]
	if !ok || client.sessionID == "" {
		return
	}
	if hub, ok := m.hubs[client.sessionID]; ok {
		delete(hub.clients, conn)
	}
	client.sessionID = ""
}
