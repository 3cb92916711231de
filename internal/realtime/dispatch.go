package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/protocol"
	"github.com/mcoot/cardboard/internal/services/engine"
)

// dispatch runs one client frame against the engine and sends any reply
func (h *Handler) dispatch(ctx context.Context, c *Client, in protocol.InMsg) {
	var err error

	switch in.Type {
	case protocol.TypeClientInit:
		var p protocol.ClientInit
		if err = protocol.Decode(in, &p); err == nil {
			err = h.engine.ClientInit(ctx, c.id, p.ClientID)
		}

	case protocol.TypeGetSessions:
		err = h.getSessions(ctx, c, in)

	case protocol.TypeJoinSession:
		err = h.joinSession(ctx, c, in)

	case protocol.TypeNewSession:
		err = h.newSession(ctx, c, in)

	case protocol.TypeHostLogin:
		err = h.hostLogin(ctx, c, in)

	case protocol.TypeStartSession:
		err = h.startSession(ctx, c, in)

	case protocol.TypeStopSession:
		err = h.stopSession(ctx, c, in)

	case protocol.TypeUpdateCurrentTurn:
		var p protocol.UpdateCurrentTurnRequest
		if err = protocol.Decode(in, &p); err == nil {
			if p.Index == nil {
				err = fmt.Errorf("%w index", protocol.ErrMissingField)
			} else {
				err = h.engine.UpdateCurrentTurn(ctx, c.id, *p.Index)
			}
		}

	case protocol.TypeAdvanceTurn:
		err = h.advanceTurn(ctx, c, in)

	case protocol.TypeUpdateCard:
		var p protocol.UpdateCardRequest
		if err = protocol.Decode(in, &p); err == nil {
			var card any
			if card, err = protocol.Field("card", p.Card); err == nil {
				err = h.engine.UpdateCard(ctx, c.id, model.CardID(p.ID), card)
			}
		}

	case protocol.TypeUpdateCards:
		var p protocol.UpdateCardsRequest
		if err = protocol.Decode(in, &p); err == nil {
			var cards any
			if cards, err = protocol.Field("cards", p.Cards); err == nil {
				err = h.engine.UpdateCards(ctx, c.id, cards)
			}
		}

	case protocol.TypeUpdateParticipant:
		var p protocol.UpdateParticipant
		if err = protocol.Decode(in, &p); err == nil {
			err = h.engine.UpdateParticipant(ctx, c.id, p.Participant)
		}

	case protocol.TypeSaveCard:
		var p protocol.SaveCard
		if err = protocol.Decode(in, &p); err == nil {
			err = h.engine.SaveCard(ctx, c.id, model.CardID(p.ID))
		}

	default:
		c.Send(protocol.NewServerMessage("unknown message type: " + in.Type))
		return
	}

	h.reportError(c, in, err)
}

// reportError tells the client about a failed request that has no ack of its own.
// Refusals by the policy are not reported.
func (h *Handler) reportError(c *Client, in protocol.InMsg, err error) {
	switch {
	case err == nil:
		return
	case engine.IsUnauthorized(err):
		return
	case errors.Is(err, engine.ErrStopped), errors.Is(err, context.Canceled):
		c.logger.Debug("request abandoned", slog.String("type", in.Type), slog.Any("error", err))
		return
	case errors.Is(err, protocol.ErrMissingField):
		c.Send(protocol.NewServerMessage(fmt.Sprintf("invalid payload for %s: %s", in.Type, err)))
	case isDecodeError(err):
		c.Send(protocol.NewServerMessage(fmt.Sprintf("invalid payload for %s", in.Type)))
	default:
		c.Send(protocol.NewServerMessage(fmt.Sprintf("%s failed: %s", in.Type, err)))
	}
	c.logger.Debug("request failed", slog.String("type", in.Type), slog.Any("error", err))
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func (h *Handler) getSessions(ctx context.Context, c *Client, in protocol.InMsg) error {
	summaries, err := h.engine.ListSessions(ctx)
	if err != nil {
		return err
	}
	sessions := make([]protocol.SessionSummary, 0, len(summaries))
	for _, s := range summaries {
		sessions = append(sessions, protocol.SummaryFromModel(s))
	}
	c.Send(protocol.NewAck(in.ReqID, protocol.SessionsAck{Sessions: sessions}))
	return nil
}

func (h *Handler) joinSession(ctx context.Context, c *Client, in protocol.InMsg) error {
	var p protocol.JoinSession
	if err := protocol.Decode(in, &p); err != nil {
		return err
	}

	result, err := h.engine.JoinSession(ctx, c.id, model.SessionID(p.SessionID))
	if err != nil {
		c.logger.Debug("join failed", slog.String("session_id", p.SessionID), slog.Any("error", err))
		c.Send(protocol.NewAck(in.ReqID, protocol.JoinAck{Status: protocol.StatusError}))
		return nil
	}

	// The connection now sits in the default session; the error status
	// tells the client its requested session is gone
	status := protocol.StatusJoined
	if result.FellBack {
		status = protocol.StatusError
	}
	c.Send(protocol.NewAck(in.ReqID, protocol.JoinAck{
		Status:  status,
		Session: protocol.SnapshotFromModel(result.Session),
	}))
	return nil
}

func (h *Handler) newSession(ctx context.Context, c *Client, in protocol.InMsg) error {
	var p protocol.NewSession
	if err := protocol.Decode(in, &p); err != nil {
		return err
	}

	session, err := h.engine.NewSession(ctx, p.Name, p.HostPassword)
	if err != nil {
		c.Send(protocol.NewAck(in.ReqID, protocol.NewSessionAck{Status: protocol.StatusError, Error: err.Error()}))
		return nil
	}
	c.Send(protocol.NewAck(in.ReqID, protocol.NewSessionAck{
		Status:    protocol.StatusSessionCreated,
		SessionID: string(session.ID),
	}))
	return nil
}

func (h *Handler) hostLogin(ctx context.Context, c *Client, in protocol.InMsg) error {
	var p protocol.HostLogin
	if err := protocol.Decode(in, &p); err != nil {
		return err
	}

	matched, err := h.engine.HostLogin(ctx, c.id, p.Password)
	if err != nil {
		c.Send(protocol.NewAck(in.ReqID, protocol.HostLoginAck{Error: err.Error()}))
		return nil
	}
	c.Send(protocol.NewAck(in.ReqID, protocol.HostLoginAck{Matched: matched}))
	return nil
}

func (h *Handler) startSession(ctx context.Context, c *Client, in protocol.InMsg) error {
	result, err := h.engine.StartSession(ctx, c.id)
	if err != nil {
		c.Send(protocol.NewAck(in.ReqID, protocol.StartAck{Error: err.Error()}))
		return nil
	}
	c.Send(protocol.NewAck(in.ReqID, protocol.StartAck{
		Timestamp: &result.StartedAt,
		TurnOrder: protocol.ParticipantIDs(result.TurnOrder),
	}))
	return nil
}

func (h *Handler) stopSession(ctx context.Context, c *Client, in protocol.InMsg) error {
	stoppedAt, err := h.engine.StopSession(ctx, c.id)
	if err != nil {
		c.Send(protocol.NewAck(in.ReqID, protocol.StopAck{Error: err.Error()}))
		return nil
	}
	c.Send(protocol.NewAck(in.ReqID, protocol.StopAck{Timestamp: &stoppedAt}))
	return nil
}

func (h *Handler) advanceTurn(ctx context.Context, c *Client, in protocol.InMsg) error {
	index, err := h.engine.AdvanceTurn(ctx, c.id)
	if err != nil {
		c.Send(protocol.NewAck(in.ReqID, protocol.AdvanceTurnAck{Error: err.Error()}))
		return nil
	}
	c.Send(protocol.NewAck(in.ReqID, protocol.AdvanceTurnAck{Index: &index}))
	return nil
}
