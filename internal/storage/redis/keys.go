package redis

import (
	"fmt"

	"github.com/mcoot/cardboard/internal/model"
)

// Key prefix for all archived data
const keyPrefix = "cardboard"

// savedCardsKey returns the Redis key for the LIST of cards saved in a session
func savedCardsKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:saved_cards:%s", keyPrefix, sessionID)
}
