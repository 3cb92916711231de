package model

import "time"

// SessionID identifies a session; it is also the path clients share as a link
type SessionID string

// SessionState represents the lifecycle phase of a session
type SessionState string

const (
	SessionStateNotStarted SessionState = "not_started"
	SessionStateActive     SessionState = "active"
	SessionStateStopped    SessionState = "stopped"
)

// Session is one collaborative workspace with its own cards, participants and turn state
type Session struct {
	ID               SessionID
	Name             string
	HostPasswordHash []byte // bcrypt hash, never exposed

	Cards        map[CardID]*Card
	Participants map[ParticipantID]*Participant
	JoinOrder    []ParticipantID // first-join order, snapshotted into TurnOrder on start

	// Turn management
	State       SessionState
	TurnOrder   []ParticipantID
	CurrentTurn int // index into TurnOrder, meaningful only while active

	// Timing
	StartedAt *time.Time
	StoppedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates an empty, not-yet-started session
func NewSession(id SessionID, name string, passwordHash []byte, now time.Time) *Session {
	return &Session{
		ID:               id,
		Name:             name,
		HostPasswordHash: passwordHash,
		Cards:            make(map[CardID]*Card),
		Participants:     make(map[ParticipantID]*Participant),
		JoinOrder:        []ParticipantID{},
		State:            SessionStateNotStarted,
		TurnOrder:        []ParticipantID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsActive returns true while turns are being taken
func (s *Session) IsActive() bool {
	return s.State == SessionStateActive
}

// CurrentTurnHolder returns the participant whose turn it is.
// ok is false when the session is not active or has no turn order.
func (s *Session) CurrentTurnHolder() (ParticipantID, bool) {
	if !s.IsActive() || len(s.TurnOrder) == 0 {
		return "", false
	}
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.TurnOrder) {
		return "", false
	}
	return s.TurnOrder[s.CurrentTurn], true
}

// GetParticipant returns the participant with the given ID, or nil if not found
func (s *Session) GetParticipant(id ParticipantID) *Participant {
	return s.Participants[id]
}

// AddParticipant registers a participant if it is new.
// Returns false if the participant was already present.
func (s *Session) AddParticipant(p *Participant) bool {
	if _, ok := s.Participants[p.ID]; ok {
		return false
	}
	s.Participants[p.ID] = p
	s.JoinOrder = append(s.JoinOrder, p.ID)
	return true
}

// Clone returns a deep copy safe to hand to other goroutines
func (s *Session) Clone() *Session {
	out := &Session{
		ID:               s.ID,
		Name:             s.Name,
		HostPasswordHash: append([]byte(nil), s.HostPasswordHash...),
		Cards:            make(map[CardID]*Card, len(s.Cards)),
		Participants:     make(map[ParticipantID]*Participant, len(s.Participants)),
		JoinOrder:        append([]ParticipantID{}, s.JoinOrder...),
		State:            s.State,
		TurnOrder:        append([]ParticipantID{}, s.TurnOrder...),
		CurrentTurn:      s.CurrentTurn,
		StartedAt:        copyTime(s.StartedAt),
		StoppedAt:        copyTime(s.StoppedAt),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	for id, card := range s.Cards {
		out.Cards[id] = card.Clone()
	}
	for id, p := range s.Participants {
		out.Participants[id] = p.Clone()
	}
	return out
}

// SessionSummary is the lightweight listing used for session discovery
type SessionSummary struct {
	ID               SessionID
	Name             string
	ParticipantCount int
	CreatedAt        time.Time
}

// Summary returns the discovery listing for this session
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:               s.ID,
		Name:             s.Name,
		ParticipantCount: len(s.Participants),
		CreatedAt:        s.CreatedAt,
	}
}

// SavedCard is a card snapshot archived by a save_card request
type SavedCard struct {
	SessionID SessionID
	Card      Card
	SavedBy   ParticipantID
	SavedAt   time.Time
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
