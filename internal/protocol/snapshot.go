package protocol

import (
	"time"

	"github.com/mcoot/cardboard/internal/model"
)

// SessionSummary is one entry of the session list
type SessionSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ParticipantCount int    `json:"participantCount"`
}

// SummaryFromModel converts a model.SessionSummary
func SummaryFromModel(s model.SessionSummary) SessionSummary {
	return SessionSummary{
		ID:               string(s.ID),
		Name:             s.Name,
		ParticipantCount: s.ParticipantCount,
	}
}

// Snapshot is the full session state sent when a client joins.
// The host password never appears here.
type Snapshot struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	Cards        map[string]map[string]any `json:"cards"`
	Participants map[string]map[string]any `json:"participants"`
	TurnOrder    []string                  `json:"turnOrder"`
	CurrentTurn  int                       `json:"currentTurn"`
	State        string                    `json:"state"`
	StartedAt    *time.Time                `json:"startedAt"`
	StoppedAt    *time.Time                `json:"stoppedAt"`
	CreatedAt    time.Time                 `json:"createdAt"`
}

// SnapshotFromModel converts a session into its wire snapshot
func SnapshotFromModel(s *model.Session) *Snapshot {
	snap := &Snapshot{
		ID:           string(s.ID),
		Name:         s.Name,
		Cards:        make(map[string]map[string]any, len(s.Cards)),
		Participants: make(map[string]map[string]any, len(s.Participants)),
		TurnOrder:    ParticipantIDs(s.TurnOrder),
		CurrentTurn:  s.CurrentTurn,
		State:        string(s.State),
		StartedAt:    s.StartedAt,
		StoppedAt:    s.StoppedAt,
		CreatedAt:    s.CreatedAt,
	}
	for id, card := range s.Cards {
		snap.Cards[string(id)] = card.Attributes()
	}
	for id, p := range s.Participants {
		snap.Participants[string(id)] = ParticipantFromModel(p)
	}
	return snap
}

// ParticipantFromModel flattens a participant: its extra attributes plus id, name and host
func ParticipantFromModel(p *model.Participant) map[string]any {
	out := make(map[string]any, len(p.Attributes)+3)
	for k, v := range p.Attributes.Clone() {
		out[k] = v
	}
	out["id"] = string(p.ID)
	out["name"] = p.Name
	out["host"] = p.Host
	return out
}

// ParticipantIDs converts ids to plain strings for the wire
func ParticipantIDs(ids []model.ParticipantID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
