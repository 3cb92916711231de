// Package policy decides who may change what in a session.
package policy

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/cardboard/internal/model"
)

// Config holds configuration for the policy service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default policy configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles host elevation and mutation authorization
type Service struct {
	cost int
}

// New creates a new policy Service
func New(cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{cost: cfg.BcryptCost}
}

// HashPassword hashes a host password for storage on a session.
// An empty password yields an empty hash.
func (s *Service) HashPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword(prehash(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash host password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether password matches the stored hash.
// A session without a host password only accepts the empty password.
func (s *Service) VerifyPassword(hash []byte, password string) bool {
	if len(hash) == 0 {
		return password == ""
	}
	return bcrypt.CompareHashAndPassword(hash, prehash(password)) == nil
}

// prehash fits passwords of any length under bcrypt's 72 byte limit
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// GrantHost marks the participant as a host
func (s *Service) GrantHost(session *model.Session, participantID model.ParticipantID) error {
	participant := session.GetParticipant(participantID)
	if participant == nil {
		return model.ErrNotInSession
	}
	participant.Host = true
	return nil
}

// CanMutateCards reports whether the participant may change cards.
// With no turn order everyone may; otherwise hosts and the current turn holder may.
func (s *Service) CanMutateCards(session *model.Session, participantID model.ParticipantID) error {
	participant := session.GetParticipant(participantID)
	if participant == nil {
		return model.ErrNotInSession
	}
	if len(session.TurnOrder) == 0 || participant.Host {
		return nil
	}
	if holder, ok := session.CurrentTurnHolder(); ok && holder == participantID {
		return nil
	}
	return model.ErrNotYourTurn
}

// CanControlSession reports whether the participant may start or stop the session
func (s *Service) CanControlSession(session *model.Session, participantID model.ParticipantID) error {
	participant := session.GetParticipant(participantID)
	if participant == nil {
		return model.ErrNotInSession
	}
	if !participant.Host {
		return model.ErrNotHost
	}
	return nil
}

// CanAdvanceTurn reports whether the participant may move the turn on.
// Hosts may always; the current turn holder may pass its own turn.
func (s *Service) CanAdvanceTurn(session *model.Session, participantID model.ParticipantID) error {
	participant := session.GetParticipant(participantID)
	if participant == nil {
		return model.ErrNotInSession
	}
	if participant.Host {
		return nil
	}
	if holder, ok := session.CurrentTurnHolder(); ok && holder == participantID {
		return nil
	}
	return model.ErrNotYourTurn
}
