// Package registry owns session lookup, creation and membership.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/mcoot/cardboard/internal/dependencies/clock"
	"github.com/mcoot/cardboard/internal/dependencies/random"
	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/storage"
)

const (
	// SessionIDLength is the length of generated session ids
	SessionIDLength = 8
	// SessionIDAlphabet is the characters used in session ids (avoid confusing chars)
	SessionIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

	// DefaultSessionID is the well-known session everyone lands in when theirs is gone
	DefaultSessionID model.SessionID = "default"
	// DefaultSessionName is used for the default session and for unnamed sessions
	DefaultSessionName = "Default"
)

// Controller manages the set of live sessions and who has joined them
type Controller struct {
	storage   storage.SessionStore
	clock     clock.Clock
	random    random.Random
	defaultID model.SessionID
	logger    *slog.Logger
}

// NewController creates a new registry Controller.
// An empty defaultID selects DefaultSessionID.
func NewController(
	storage storage.SessionStore,
	clock clock.Clock,
	random random.Random,
	defaultID model.SessionID,
	logger *slog.Logger,
) *Controller {
	if defaultID == "" {
		defaultID = DefaultSessionID
	}
	return &Controller{
		storage:   storage,
		clock:     clock,
		random:    random,
		defaultID: defaultID,
		logger:    logger.With(slog.String("component", "registry")),
	}
}

// DefaultID returns the id of the fallback session
func (c *Controller) DefaultID() model.SessionID {
	return c.defaultID
}

// CreateSession creates a new empty session under a fresh id.
// Names need not be unique; a blank name becomes DefaultSessionName.
func (c *Controller) CreateSession(ctx context.Context, name string, passwordHash []byte) (*model.Session, error) {
	// Generate unique session id
	var id model.SessionID
	for {
		id = model.SessionID(c.random.String(SessionIDLength, SessionIDAlphabet))
		if id == c.defaultID {
			continue
		}
		exists, err := c.storage.SessionExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	session := model.NewSession(id, sessionName(name), passwordHash, c.clock.Now())
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.String("name", session.Name),
	)
	return session, nil
}

// GetSession retrieves a session by id
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// SaveSession persists a modified session
func (c *Controller) SaveSession(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = c.clock.Now()
	return c.storage.SaveSession(ctx, session)
}

// ListSessions returns a summary of every session, oldest first
func (c *Controller) ListSessions(ctx context.Context) ([]model.SessionSummary, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})

	summaries := make([]model.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.Summary())
	}
	return summaries, nil
}

// EnsureDefault returns the default session, creating it on first use
func (c *Controller) EnsureDefault(ctx context.Context) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, c.defaultID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, model.ErrSessionNotFound) {
		return nil, err
	}

	session = model.NewSession(c.defaultID, DefaultSessionName, nil, c.clock.Now())
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("default session created", slog.String("session_id", string(c.defaultID)))
	return session, nil
}

// JoinSession registers the participant in the session with the given id.
// An unknown id falls back to the default session; fellBack reports when that happened.
// A participant already in the session keeps its name and host flag.
func (c *Controller) JoinSession(
	ctx context.Context,
	id model.SessionID,
	participantID model.ParticipantID,
) (session *model.Session, fellBack bool, joined bool, err error) {
	session, err = c.storage.GetSession(ctx, id)
	if errors.Is(err, model.ErrSessionNotFound) {
		c.logger.Debug("session not found, falling back to default",
			slog.String("session_id", string(id)),
		)
		fellBack = true
		session, err = c.EnsureDefault(ctx)
	}
	if err != nil {
		return nil, false, false, err
	}

	now := c.clock.Now()
	joined = session.AddParticipant(&model.Participant{
		ID:         participantID,
		Name:       model.DefaultParticipantName(participantID),
		Attributes: model.Attributes{},
		JoinedAt:   now,
	})
	if joined {
		session.UpdatedAt = now
		if err := c.storage.SaveSession(ctx, session); err != nil {
			return nil, false, false, err
		}
	}

	return session, fellBack, joined, nil
}

func sessionName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultSessionName
	}
	return name
}
