package memory

import (
	"context"
	"sync"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Sessions are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	sessions   map[model.SessionID]*model.Session
	savedCards map[model.SessionID][]*model.SavedCard
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:   make(map[model.SessionID]*model.Session),
		savedCards: make(map[model.SessionID][]*model.SavedCard),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		result = append(result, session.Clone())
	}
	return result, nil
}

func (s *Storage) SessionExists(ctx context.Context, id model.SessionID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok, nil
}

// Card archive operations

func (s *Storage) SaveCard(ctx context.Context, saved *model.SavedCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := *saved
	entry.Card = *saved.Card.Clone()
	s.savedCards[saved.SessionID] = append(s.savedCards[saved.SessionID], &entry)
	return nil
}

func (s *Storage) ListSavedCards(ctx context.Context, sessionID model.SessionID) ([]*model.SavedCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	saved := s.savedCards[sessionID]
	result := make([]*model.SavedCard, 0, len(saved))
	for _, entry := range saved {
		c := *entry
		c.Card = *entry.Card.Clone()
		result = append(result, &c)
	}
	return result, nil
}
