package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/cardboard/internal/protocol"
)

const socketTimeout = 10 * time.Second

// Frame is a message received from the server
type Frame struct {
	Type    string          `json:"t"`
	ReqID   string          `json:"reqId,omitempty"`
	Payload json.RawMessage `json:"p,omitempty"`
}

// Socket is a websocket connection to the server identified by a client id
type Socket struct {
	conn   *websocket.Conn
	nextID int
}

// websocketURL turns the configured server URL into the /ws endpoint
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	return u.String(), nil
}

// Dial connects to the server and announces the client id
func Dial(ctx context.Context, serverURL, clientID string) (*Socket, error) {
	wsURL, err := websocketURL(serverURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	s := &Socket{conn: conn}
	if err := s.Send(protocol.TypeClientInit, protocol.ClientInit{ClientID: clientID}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Send writes a message that expects no reply
func (s *Socket) Send(msgType string, payload any) error {
	return s.write(protocol.OutMsg{Type: msgType, Payload: payload})
}

// Request writes a message and waits for its ack, decoding the payload into result.
// Pushes that arrive before the ack are passed to onPush when it is not nil.
func (s *Socket) Request(msgType string, payload, result any, onPush func(Frame)) error {
	s.nextID++
	reqID := strconv.Itoa(s.nextID)

	if err := s.write(protocol.OutMsg{Type: msgType, ReqID: reqID, Payload: payload}); err != nil {
		return err
	}

	deadline := time.Now().Add(socketTimeout)
	for {
		f, err := s.read(deadline)
		if err != nil {
			return err
		}
		if f.Type == protocol.TypeAck && f.ReqID == reqID {
			if result == nil || len(f.Payload) == 0 {
				return nil
			}
			if err := json.Unmarshal(f.Payload, result); err != nil {
				return fmt.Errorf("failed to parse ack: %w", err)
			}
			return nil
		}
		if onPush != nil {
			onPush(f)
		}
	}
}

// Sync waits until the server has handled every message sent so far.
// Frames from one connection are handled in order, so any acked request works.
func (s *Socket) Sync(onPush func(Frame)) error {
	return s.Request(protocol.TypeGetSessions, nil, nil, onPush)
}

// Next blocks until the next frame arrives
func (s *Socket) Next() (Frame, error) {
	return s.read(time.Time{})
}

// Close sends a close frame and closes the connection
func (s *Socket) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}

// Join joins a session and returns its snapshot. Joining an unknown
// session drops the client into the default session and reports an error.
func (s *Socket) Join(sessionID string) (*protocol.Snapshot, error) {
	var ack protocol.JoinAck
	if err := s.Request(protocol.TypeJoinSession, protocol.JoinSession{SessionID: sessionID}, &ack, nil); err != nil {
		return nil, err
	}
	if ack.Status != protocol.StatusJoined {
		return ack.Session, fmt.Errorf("session %s not found", sessionID)
	}
	return ack.Session, nil
}

func (s *Socket) write(msg protocol.OutMsg) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(socketTimeout)); err != nil {
		return err
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}
	return nil
}

func (s *Socket) read(deadline time.Time) (Frame, error) {
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return Frame{}, err
	}
	var f Frame
	if err := s.conn.ReadJSON(&f); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return Frame{}, ErrClosed
		}
		return Frame{}, fmt.Errorf("read failed: %w", err)
	}
	return f, nil
}

// ErrClosed is returned once the server closes the connection
var ErrClosed = errors.New("connection closed")
