// Package protocol defines the websocket wire format: a JSON envelope
// {"t": type, "reqId": id, "p": payload} carrying named messages.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is returned for a payload without a required field
var ErrMissingField = errors.New("missing field")

// Client to server messages
const (
	TypeClientInit        = "client_init"
	TypeGetSessions       = "get_sessions"
	TypeJoinSession       = "join_session"
	TypeNewSession        = "new_session"
	TypeHostLogin         = "host_login"
	TypeStartSession      = "start_session"
	TypeStopSession       = "stop_session"
	TypeUpdateCurrentTurn = "update_current_turn"
	TypeUpdateCard        = "update_card"
	TypeUpdateCards       = "update_cards"
	TypeUpdateParticipant = "update_participant"
	TypeSaveCard          = "save_card"
	TypeAdvanceTurn       = "advance_turn"
)

// Server to client messages
const (
	TypeAck           = "ack"
	TypeUpdateTurns   = "update_turns"
	TypeUpdateSession = "update_session"
	TypeServerMessage = "server_message"
)

// Join and create statuses
const (
	StatusJoined         = "joined"
	StatusError          = "error"
	StatusSessionCreated = "session_created"
)

// InMsg is a frame received from a client. The payload is decoded once the type is known.
type InMsg struct {
	Type    string          `json:"t"`
	ReqID   string          `json:"reqId,omitempty"`
	Payload json.RawMessage `json:"p,omitempty"`
}

// OutMsg is a frame sent to a client
type OutMsg struct {
	Type    string `json:"t"`
	ReqID   string `json:"reqId,omitempty"`
	Payload any    `json:"p,omitempty"`
}

// NewMessage builds a server push
func NewMessage(msgType string, payload any) OutMsg {
	return OutMsg{Type: msgType, Payload: payload}
}

// NewAck builds the reply to a request
func NewAck(reqID string, payload any) OutMsg {
	return OutMsg{Type: TypeAck, ReqID: reqID, Payload: payload}
}

// NewServerMessage builds a human-readable notice for the client
func NewServerMessage(message string) OutMsg {
	return NewMessage(TypeServerMessage, ServerMessage{Message: message})
}

// Decode unmarshals the payload of msg into v.
// A missing payload leaves v untouched.
func Decode(msg InMsg, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(msg.Payload, v)
}

// Field decodes a required raw payload field.
// Only a literal null yields nil; an absent field is an error.
func Field(name string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w %s", ErrMissingField, name)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ConnID identifies one websocket connection
type ConnID string
