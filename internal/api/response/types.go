package response

import (
	"sort"
	"time"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/protocol"
)

// SessionSummary represents a session in list responses
type SessionSummary struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ParticipantCount int       `json:"participant_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// SessionSummaryFromModel converts model.SessionSummary
func SessionSummaryFromModel(s model.SessionSummary) SessionSummary {
	return SessionSummary{
		ID:               string(s.ID),
		Name:             s.Name,
		ParticipantCount: s.ParticipantCount,
		CreatedAt:        s.CreatedAt,
	}
}

// SessionList is the response for listing sessions
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// CreatedSession is the response after creating a session
type CreatedSession struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Card represents a card in API responses
type Card struct {
	ID      string         `json:"id"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Content map[string]any `json:"content"`
}

// CardFromModel converts model.Card
func CardFromModel(c *model.Card) Card {
	content := map[string]any(c.Content.Clone())
	if content == nil {
		content = map[string]any{}
	}
	return Card{
		ID:      string(c.ID),
		X:       c.X,
		Y:       c.Y,
		Content: content,
	}
}

// Participant represents a session participant
type Participant struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Host       bool           `json:"host"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ParticipantFromModel converts model.Participant
func ParticipantFromModel(p *model.Participant) Participant {
	return Participant{
		ID:         string(p.ID),
		Name:       p.Name,
		Host:       p.Host,
		Attributes: p.Attributes.Clone(),
	}
}

// Session represents the full session state. The host password is never included.
type Session struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	State        string        `json:"state"`
	Cards        []Card        `json:"cards"`
	Participants []Participant `json:"participants"`
	TurnOrder    []string      `json:"turn_order"`
	CurrentTurn  int           `json:"current_turn"`
	StartedAt    *time.Time    `json:"started_at"`
	StoppedAt    *time.Time    `json:"stopped_at"`
	CreatedAt    time.Time     `json:"created_at"`
}

// SessionFromModel converts model.Session.
// Cards are ordered by id and participants by join order.
func SessionFromModel(s *model.Session) Session {
	cards := make([]Card, 0, len(s.Cards))
	for _, card := range s.Cards {
		cards = append(cards, CardFromModel(card))
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })

	participants := make([]Participant, 0, len(s.JoinOrder))
	for _, id := range s.JoinOrder {
		if p := s.GetParticipant(id); p != nil {
			participants = append(participants, ParticipantFromModel(p))
		}
	}

	return Session{
		ID:           string(s.ID),
		Name:         s.Name,
		State:        string(s.State),
		Cards:        cards,
		Participants: participants,
		TurnOrder:    protocol.ParticipantIDs(s.TurnOrder),
		CurrentTurn:  s.CurrentTurn,
		StartedAt:    s.StartedAt,
		StoppedAt:    s.StoppedAt,
		CreatedAt:    s.CreatedAt,
	}
}

// SavedCard represents an archived card snapshot
type SavedCard struct {
	Card    Card      `json:"card"`
	SavedBy string    `json:"saved_by"`
	SavedAt time.Time `json:"saved_at"`
}

// SavedCardList is the response for listing archived cards
type SavedCardList struct {
	SavedCards []SavedCard `json:"saved_cards"`
}

// SavedCardListFromModel converts archived cards in the order they were saved
func SavedCardListFromModel(saved []*model.SavedCard) SavedCardList {
	out := make([]SavedCard, 0, len(saved))
	for _, s := range saved {
		out = append(out, SavedCard{
			Card:    CardFromModel(&s.Card),
			SavedBy: string(s.SavedBy),
			SavedAt: s.SavedAt,
		})
	}
	return SavedCardList{SavedCards: out}
}
