package engine

import (
	"context"
	"fmt"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/protocol"
	"github.com/mcoot/cardboard/internal/services/merge"
)

// UpdateCard merges patch into one card. A nil patch deletes the card.
func (e *Engine) UpdateCard(ctx context.Context, conn protocol.ConnID, id model.CardID, patch any) error {
	if id == "" {
		return fmt.Errorf("%w: missing card id", model.ErrInvalidCard)
	}

	return e.exec(ctx, protocol.TypeUpdateCard, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		if err := e.policy.CanMutateCards(session, state.participantID); err != nil {
			return e.reject(protocol.TypeUpdateCard, session, state.participantID, err)
		}

		card, err := applyCardPatch(session.Cards[id], id, patch)
		if err != nil {
			return err
		}
		if card == nil {
			delete(session.Cards, id)
		} else {
			session.Cards[id] = card
		}

		if err := e.registry.SaveSession(ctx, session); err != nil {
			return err
		}

		e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateCard, protocol.UpdateCard{
			ID:   string(id),
			Card: model.CloneValue(patch),
		}))
		return nil
	})
}

// UpdateCards applies patches to many cards at once. A nil map clears the board.
// The batch is applied only if every patch in it is valid.
func (e *Engine) UpdateCards(ctx context.Context, conn protocol.ConnID, cards any) error {
	var patches model.Attributes
	if cards != nil {
		var ok bool
		patches, ok = model.AsAttributes(cards)
		if !ok {
			return fmt.Errorf("%w: cards must be an object or null", model.ErrInvalidCard)
		}
	}

	return e.exec(ctx, protocol.TypeUpdateCards, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		if err := e.policy.CanMutateCards(session, state.participantID); err != nil {
			return e.reject(protocol.TypeUpdateCards, session, state.participantID, err)
		}

		if patches == nil {
			session.Cards = make(map[model.CardID]*model.Card)
		} else {
			updated := make(map[model.CardID]*model.Card, len(patches))
			for key, patch := range patches {
				id := model.CardID(key)
				if id == "" {
					return fmt.Errorf("%w: missing card id", model.ErrInvalidCard)
				}
				card, err := applyCardPatch(session.Cards[id], id, patch)
				if err != nil {
					return err
				}
				updated[id] = card
			}
			for id, card := range updated {
				if card == nil {
					delete(session.Cards, id)
				} else {
					session.Cards[id] = card
				}
			}
		}

		if err := e.registry.SaveSession(ctx, session); err != nil {
			return err
		}

		var payload any
		if patches != nil {
			payload = patches.Clone()
		}
		e.publisher.Publish(session.ID, conn, protocol.NewMessage(protocol.TypeUpdateCards, protocol.UpdateCards{Cards: payload}))
		return nil
	})
}

// SaveCard archives a snapshot of one card
func (e *Engine) SaveCard(ctx context.Context, conn protocol.ConnID, id model.CardID) error {
	var saved *model.SavedCard
	err := e.exec(ctx, protocol.TypeSaveCard, conn, func(ctx context.Context) error {
		state, session, err := e.member(ctx, conn)
		if err != nil {
			return err
		}
		card, ok := session.Cards[id]
		if !ok {
			return fmt.Errorf("%w: %s", model.ErrCardNotFound, id)
		}
		saved = &model.SavedCard{
			SessionID: session.ID,
			Card:      *card.Clone(),
			SavedBy:   state.participantID,
			SavedAt:   e.clock.Now(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The archive may be remote; write it off the engine goroutine
	if err := e.archive.SaveCard(ctx, saved); err != nil {
		return fmt.Errorf("archive card: %w", err)
	}
	return nil
}

// SavedCards lists the cards archived in a session
func (e *Engine) SavedCards(ctx context.Context, sessionID model.SessionID) ([]*model.SavedCard, error) {
	return e.archive.ListSavedCards(ctx, sessionID)
}

// applyCardPatch returns the card after merging patch, or nil when the patch deletes it
func applyCardPatch(existing *model.Card, id model.CardID, patch any) (*model.Card, error) {
	if patch == nil {
		return nil, nil
	}
	tree, ok := model.AsAttributes(patch)
	if !ok {
		return nil, fmt.Errorf("%w: card %s must be an object or null", model.ErrInvalidCard, id)
	}

	var base model.Attributes
	if existing != nil {
		base = existing.Attributes()
	}
	merged := merge.Merge(base, tree)

	return model.CardFromAttributes(id, merged)
}
