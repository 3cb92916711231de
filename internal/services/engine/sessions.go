package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/protocol"
)

// JoinResult is the outcome of joining a session
type JoinResult struct {
	Session *model.Session
	// FellBack is set when the requested session did not exist and the
	// connection was placed in the default session instead
	FellBack bool
}

// StartResult is the outcome of starting a session
type StartResult struct {
	StartedAt time.Time
	TurnOrder []model.ParticipantID
}

// ClientInit binds the connection to a participant identity
func (e *Engine) ClientInit(ctx context.Context, conn protocol.ConnID, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return model.ErrInvalidParticipant
	}

	return e.exec(ctx, protocol.TypeClientInit, conn, func(ctx context.Context) error {
		state, ok := e.conns[conn]
		if ok && state.participantID == model.ParticipantID(clientID) {
			return nil
		}
		if ok && state.sessionID != "" {
			// A new identity on the same connection starts outside any session
			e.publisher.Unsubscribe(conn)
		}
		e.conns[conn] = &connState{participantID: model.ParticipantID(clientID)}
		return nil
	})
}

// Disconnect forgets the connection. Its participant stays in the session.
func (e *Engine) Disconnect(ctx context.Context, conn protocol.ConnID) error {
	return e.exec(ctx, "disconnect", conn, func(ctx context.Context) error {
		delete(e.conns, conn)
		e.publisher.Unsubscribe(conn)
		return nil
	})
}

// ListSessions returns summaries of every session
func (e *Engine) ListSessions(ctx context.Context) ([]model.SessionSummary, error) {
	var summaries []model.SessionSummary
	err := e.exec(ctx, protocol.TypeGetSessions, "", func(ctx context.Context) error {
		var err error
		summaries, err = e.registry.ListSessions(ctx)
		return err
	})
	return summaries, err
}

// Snapshot returns a copy of the session's current state
func (e *Engine) Snapshot(ctx context.Context, id model.SessionID) (*model.Session, error) {
	var session *model.Session
	err := e.exec(ctx, "snapshot", "", func(ctx context.Context) error {
		var err error
		session, err = e.registry.GetSession(ctx, id)
		return err
	})
	return session, err
}

// NewSession creates a session protected by the given host password
func (e *Engine) NewSession(ctx context.Context, name, hostPassword string) (*model.Session, error) {
	// Hashing is slow; keep it off the engine goroutine
	hash, err := e.policy.HashPassword(hostPassword)
	if err != nil {
		return nil, err
	}

	var session *model.Session
	err = e.exec(ctx, protocol.TypeNewSession, "", func(ctx context.Context) error {
		var err error
		session, err = e.registry.CreateSession(ctx, name, hash)
		if err != nil {
			return err
		}
		e.recorder.SessionCreated()
		return nil
	})
	return session, err
}

// JoinSession places the connection's participant in a session.
// An unknown id falls back to the default session.
func (e *Engine) JoinSession(ctx context.Context, conn protocol.ConnID, id model.SessionID) (*JoinResult, error) {
	var result *JoinResult
	err := e.exec(ctx, protocol.TypeJoinSession, conn, func(ctx context.Context) error {
		state, ok := e.conns[conn]
		if !ok {
			return model.ErrNotInSession
		}

		session, fellBack, joined, err := e.registry.JoinSession(ctx, id, state.participantID)
		if err != nil {
			return err
		}

		state.sessionID = session.ID
		e.publisher.Subscribe(conn, session.ID)

		if joined {
			participant := session.GetParticipant(state.participantID)
			e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateParticipant, protocol.UpdateParticipant{
				ID:          string(participant.ID),
				Participant: map[string]any{"name": participant.Name, "host": participant.Host},
			}))
		}

		e.sessionLogger(session.ID).Info("participant joined session",
			slog.String("participant_id", string(state.participantID)),
			slog.Bool("new", joined),
			slog.Bool("fell_back", fellBack),
		)

		result = &JoinResult{Session: session, FellBack: fellBack}
		return nil
	})
	return result, err
}

// HostLogin elevates the connection's participant when the password matches.
// A wrong password is reported as false, not as an error.
func (e *Engine) HostLogin(ctx context.Context, conn protocol.ConnID, password string) (bool, error) {
	var (
		hash      []byte
		sessionID model.SessionID
	)
	err := e.exec(ctx, protocol.TypeHostLogin, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		if session.GetParticipant(state.participantID) == nil {
			return model.ErrNotInSession
		}
		hash = session.HostPasswordHash
		sessionID = session.ID
		return nil
	})
	if err != nil {
		return false, err
	}

	// Compare off the engine goroutine
	if !e.policy.VerifyPassword(hash, password) {
		e.sessionLogger(sessionID).Info("host login failed", slog.String("conn_id", string(conn)))
		return false, nil
	}

	err = e.exec(ctx, "grant_host", conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		if session.ID != sessionID {
			// Moved to another session while the password was being checked
			return model.ErrNotInSession
		}
		if err := e.policy.GrantHost(session, state.participantID); err != nil {
			return err
		}
		if err := e.registry.SaveSession(ctx, session); err != nil {
			return err
		}

		e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateParticipant, protocol.UpdateParticipant{
			ID:          string(state.participantID),
			Participant: map[string]any{"host": true},
		}))
		e.sessionLogger(session.ID).Info("host login succeeded",
			slog.String("participant_id", string(state.participantID)),
		)
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// StartSession begins turn taking. Only hosts may start a session.
func (e *Engine) StartSession(ctx context.Context, conn protocol.ConnID) (*StartResult, error) {
	var result *StartResult
	err := e.exec(ctx, protocol.TypeStartSession, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		if err := e.policy.CanControlSession(session, state.participantID); err != nil {
			return e.reject(protocol.TypeStartSession, session, state.participantID, err)
		}

		startedAt, err := e.turns.Start(session)
		if err != nil {
			return err
		}
		if err := e.registry.SaveSession(ctx, session); err != nil {
			return err
		}

		turnOrder := protocol.ParticipantIDs(session.TurnOrder)
		e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateTurns, protocol.UpdateTurns{TurnOrder: turnOrder}))
		e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateCurrentTurn, protocol.UpdateCurrentTurn{Index: session.CurrentTurn}))
		e.publishSessionState(session, conn)

		result = &StartResult{
			StartedAt: startedAt,
			TurnOrder: append([]model.ParticipantID{}, session.TurnOrder...),
		}
		return nil
	})
	return result, err
}

// StopSession ends turn taking. Only hosts may stop a session.
func (e *Engine) StopSession(ctx context.Context, conn protocol.ConnID) (time.Time, error) {
	var stoppedAt time.Time
	err := e.exec(ctx, protocol.TypeStopSession, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		if err := e.policy.CanControlSession(session, state.participantID); err != nil {
			return e.reject(protocol.TypeStopSession, session, state.participantID, err)
		}

		stoppedAt, err = e.turns.Stop(session)
		if err != nil {
			return err
		}
		if err := e.registry.SaveSession(ctx, session); err != nil {
			return err
		}

		e.publishSessionState(session, conn)
		return nil
	})
	return stoppedAt, err
}

// UpdateCurrentTurn moves the turn to index. Hosts and the current turn holder may do this.
func (e *Engine) UpdateCurrentTurn(ctx context.Context, conn protocol.ConnID, index int) error {
	return e.exec(ctx, protocol.TypeUpdateCurrentTurn, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		if err := e.policy.CanAdvanceTurn(session, state.participantID); err != nil {
			return e.reject(protocol.TypeUpdateCurrentTurn, session, state.participantID, err)
		}

		if err := e.turns.SetCurrentTurn(session, index); err != nil {
			return err
		}
		if err := e.registry.SaveSession(ctx, session); err != nil {
			return err
		}

		e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateCurrentTurn, protocol.UpdateCurrentTurn{Index: index}))
		return nil
	})
}

// AdvanceTurn passes the turn to the next participant in order
func (e *Engine) AdvanceTurn(ctx context.Context, conn protocol.ConnID) (int, error) {
	var index int
	err := e.exec(ctx, protocol.TypeAdvanceTurn, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		if err := e.policy.CanAdvanceTurn(session, state.participantID); err != nil {
			return e.reject(protocol.TypeAdvanceTurn, session, state.participantID, err)
		}

		index, err = e.turns.Advance(session)
		if err != nil {
			return err
		}
		if err := e.registry.SaveSession(ctx, session); err != nil {
			return err
		}

		e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateCurrentTurn, protocol.UpdateCurrentTurn{Index: index}))
		return nil
	})
	return index, err
}

func (e *Engine) publishSessionState(session *model.Session, exclude protocol.ConnID) {
	e.publisher.Publish(session.ID, exclude, protocol.NewMessage(protocol.TypeUpdateSession, protocol.UpdateSession{
		State:     string(session.State),
		StartedAt: session.StartedAt,
		StoppedAt: session.StoppedAt,
	}))
}
