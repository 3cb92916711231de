package model

import (
	"strings"
	"time"
)

// ParticipantID is the persistent identity a client supplies on connect
type ParticipantID string

// Participant is one identity within a session
type Participant struct {
	ID         ParticipantID
	Name       string
	Host       bool
	Attributes Attributes // extra client-defined keys, opaque to the server
	JoinedAt   time.Time
}

// DefaultParticipantName is the placeholder used when a participant has no name.
// e.g. "Anonymous 3FA8" for id "3fa85f64..."
func DefaultParticipantName(id ParticipantID) string {
	if id == "" {
		return "Anonymous"
	}
	prefix := []rune(string(id))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return "Anonymous " + strings.ToUpper(string(prefix))
}

// Clone returns a deep copy of the participant
func (p *Participant) Clone() *Participant {
	return &Participant{
		ID:         p.ID,
		Name:       p.Name,
		Host:       p.Host,
		Attributes: p.Attributes.Clone(),
		JoinedAt:   p.JoinedAt,
	}
}
