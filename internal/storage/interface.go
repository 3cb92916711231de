package storage

import (
	"context"

	"github.com/mcoot/cardboard/internal/model"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_archive.go github.com/mcoot/cardboard/internal/storage CardArchive

// SessionStore holds every live session for the lifetime of the process
type SessionStore interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	SessionExists(ctx context.Context, id model.SessionID) (bool, error)
}

// CardArchive keeps card snapshots saved by participants
type CardArchive interface {
	SaveCard(ctx context.Context, saved *model.SavedCard) error
	ListSavedCards(ctx context.Context, sessionID model.SessionID) ([]*model.SavedCard, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	SessionStore
	CardArchive
}
