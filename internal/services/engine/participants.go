package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/protocol"
	"github.com/mcoot/cardboard/internal/services/merge"
)

// Participant keys a client cannot set on itself
var reservedParticipantKeys = map[string]bool{
	"id":   true,
	"host": true,
}

// UpdateParticipant patches the connection's own participant.
// A blank or null name resets to the default name. Host and id cannot be changed.
func (e *Engine) UpdateParticipant(ctx context.Context, conn protocol.ConnID, patch map[string]any) error {
	if patch == nil {
		return fmt.Errorf("%w: participant must be an object", model.ErrInvalidParticipant)
	}

	return e.exec(ctx, protocol.TypeUpdateParticipant, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		participant := session.GetParticipant(state.participantID)
		if participant == nil {
			return model.ErrNotInSession
		}

		sanitized := make(model.Attributes, len(patch))
		extra := make(model.Attributes, len(patch))
		for key, value := range patch {
			switch {
			case reservedParticipantKeys[key]:
				continue
			case key == "name":
				name, err := participantName(participant.ID, value)
				if err != nil {
					return err
				}
				participant.Name = name
				sanitized["name"] = name
			default:
				extra[key] = value
				sanitized[key] = model.CloneValue(value)
			}
		}
		if len(sanitized) == 0 {
			return nil
		}
		if len(extra) > 0 {
			participant.Attributes = merge.Merge(participant.Attributes, extra)
		}

		if err := e.registry.SaveSession(ctx, session); err != nil {
			return err
		}

		e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateParticipant, protocol.UpdateParticipant{
			ID:          string(participant.ID),
			Participant: sanitized,
		}))
		return nil
	})
}

func participantName(id model.ParticipantID, value any) (string, error) {
	if value == nil {
		return model.DefaultParticipantName(id), nil
	}
	name, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: name must be a string", model.ErrInvalidParticipant)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.DefaultParticipantName(id), nil
	}
	return name, nil
}
