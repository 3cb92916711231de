package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=../mocks/mock_uuid.go github.com/mcoot/cardboard/internal/dependencies/uuid UUID

// UUID generates unique identifiers that can be mocked for testing
type UUID interface {
	NewUUID() string
}

// DefaultUUID implements UUID using random (version 4) UUIDs
type DefaultUUID struct{}

// New creates a new DefaultUUID
func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new UUID string
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}
