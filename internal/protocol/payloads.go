package protocol

import (
	"encoding/json"
	"time"
)

// Requests

type ClientInit struct {
	ClientID string `json:"clientId"`
}

type JoinSession struct {
	SessionID string `json:"sessionId"`
}

type NewSession struct {
	Name         string `json:"name"`
	HostPassword string `json:"hostPassword"`
}

type HostLogin struct {
	Password string `json:"password"`
}

// UpdateCardRequest keeps the card raw so an absent card can be told apart from null
type UpdateCardRequest struct {
	ID   string          `json:"id"`
	Card json.RawMessage `json:"card"`
}

type UpdateCardsRequest struct {
	Cards json.RawMessage `json:"cards"`
}

type UpdateCurrentTurnRequest struct {
	Index *int `json:"index"`
}

// UpdateCard carries a card patch; a null card deletes it
type UpdateCard struct {
	ID   string `json:"id"`
	Card any    `json:"card"`
}

// UpdateCards carries patches keyed by card id; null cards clears the board
type UpdateCards struct {
	Cards any `json:"cards"`
}

// UpdateParticipant is sent by a client to patch its own participant.
// The server rebroadcasts it with the sender's id filled in.
type UpdateParticipant struct {
	ID          string         `json:"id,omitempty"`
	Participant map[string]any `json:"participant"`
}

type UpdateCurrentTurn struct {
	Index int `json:"index"`
}

type SaveCard struct {
	ID string `json:"id"`
}

type AdvanceTurnAck struct {
	Index *int   `json:"index,omitempty"`
	Error string `json:"error,omitempty"`
}

// Pushes

type UpdateTurns struct {
	TurnOrder []string `json:"turnOrder"`
}

type UpdateSession struct {
	State     string     `json:"state"`
	StartedAt *time.Time `json:"startedAt"`
	StoppedAt *time.Time `json:"stoppedAt"`
}

type ServerMessage struct {
	Message string `json:"message"`
}

// Acks

type SessionsAck struct {
	Sessions []SessionSummary `json:"sessions"`
}

type JoinAck struct {
	Status  string    `json:"status"`
	Session *Snapshot `json:"session,omitempty"`
}

type NewSessionAck struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type HostLoginAck struct {
	Error   string `json:"error,omitempty"`
	Matched bool   `json:"matched"`
}

type StartAck struct {
	Error     string     `json:"error,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	TurnOrder []string   `json:"turnOrder,omitempty"`
}

type StopAck struct {
	Error     string     `json:"error,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
