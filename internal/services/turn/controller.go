// Package turn implements the session lifecycle and turn rotation.
package turn

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/cardboard/internal/dependencies/clock"
	"github.com/mcoot/cardboard/internal/model"
)

// Controller drives a session through not_started -> active -> stopped.
// It mutates the session in place; persisting it is the caller's job.
type Controller struct {
	clock  clock.Clock
	logger *slog.Logger
}

// NewController creates a new turn Controller
func NewController(clock clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		clock:  clock,
		logger: logger.With(slog.String("component", "turn")),
	}
}

// Start begins turn taking. The current join order becomes the turn order
// and the first participant holds the turn. A stopped session may be restarted.
func (c *Controller) Start(session *model.Session) (time.Time, error) {
	if session.State == model.SessionStateActive {
		return time.Time{}, model.ErrAlreadyStarted
	}

	now := c.clock.Now()
	session.TurnOrder = append([]model.ParticipantID{}, session.JoinOrder...)
	session.CurrentTurn = 0
	session.StartedAt = &now
	session.StoppedAt = nil
	session.State = model.SessionStateActive
	session.UpdatedAt = now

	c.logger.Info("session started",
		slog.String("session_id", string(session.ID)),
		slog.Int("turn_order_len", len(session.TurnOrder)),
	)
	return now, nil
}

// Advance passes the turn to the next participant, wrapping at the end.
// It returns the new turn index. An empty turn order leaves the index alone.
func (c *Controller) Advance(session *model.Session) (int, error) {
	if session.State != model.SessionStateActive {
		return 0, model.ErrNotActive
	}
	if len(session.TurnOrder) == 0 {
		return session.CurrentTurn, nil
	}

	session.CurrentTurn = (session.CurrentTurn + 1) % len(session.TurnOrder)
	session.UpdatedAt = c.clock.Now()
	return session.CurrentTurn, nil
}

// SetCurrentTurn jumps the turn to the given index
func (c *Controller) SetCurrentTurn(session *model.Session, index int) error {
	if session.State != model.SessionStateActive {
		return model.ErrNotActive
	}
	if index < 0 || index >= len(session.TurnOrder) {
		return fmt.Errorf("%w: %d of %d", model.ErrInvalidTurnIndex, index, len(session.TurnOrder))
	}

	session.CurrentTurn = index
	session.UpdatedAt = c.clock.Now()
	return nil
}

// Stop ends turn taking. Stopping a session that never started only records
// the stop time; stopping twice is an error.
func (c *Controller) Stop(session *model.Session) (time.Time, error) {
	now := c.clock.Now()

	switch session.State {
	case model.SessionStateActive:
		session.State = model.SessionStateStopped
	case model.SessionStateNotStarted:
		// nothing to stop
	default:
		return time.Time{}, model.ErrInvalidTransition
	}

	session.StoppedAt = &now
	session.UpdatedAt = now

	c.logger.Info("session stopped",
		slog.String("session_id", string(session.ID)),
		slog.String("state", string(session.State)),
	)
	return now, nil
}
