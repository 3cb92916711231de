package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/storage"
)

// Archive is a Redis-backed card archive.
// Live sessions stay in process memory; only saved card snapshots go to Redis.
type Archive struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis archive and verifies the connection
func New(cfg Config) (*Archive, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Archive{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis archive with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Archive {
	return &Archive{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (a *Archive) Close() error {
	return a.client.Close()
}

// Ensure Archive implements the interface
var _ storage.CardArchive = (*Archive)(nil)

// savedCardRecord is the JSON form of a saved card
type savedCardRecord struct {
	SessionID string         `json:"session_id"`
	CardID    string         `json:"card_id"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Content   map[string]any `json:"content,omitempty"`
	SavedBy   string         `json:"saved_by,omitempty"`
	SavedAt   time.Time      `json:"saved_at"`
}

func (a *Archive) SaveCard(ctx context.Context, saved *model.SavedCard) error {
	data, err := json.Marshal(savedCardRecord{
		SessionID: string(saved.SessionID),
		CardID:    string(saved.Card.ID),
		X:         saved.Card.X,
		Y:         saved.Card.Y,
		Content:   saved.Card.Content,
		SavedBy:   string(saved.SavedBy),
		SavedAt:   saved.SavedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal saved card: %w", err)
	}

	key := savedCardsKey(saved.SessionID)

	// Use pipeline for atomic append + TTL refresh
	pipe := a.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if a.cfg.ArchiveTTL > 0 {
		pipe.Expire(ctx, key, a.cfg.ArchiveTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (a *Archive) ListSavedCards(ctx context.Context, sessionID model.SessionID) ([]*model.SavedCard, error) {
	items, err := a.client.LRange(ctx, savedCardsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*model.SavedCard, 0, len(items))
	for _, item := range items {
		var rec savedCardRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal saved card: %w", err)
		}
		result = append(result, &model.SavedCard{
			SessionID: model.SessionID(rec.SessionID),
			Card: model.Card{
				ID:      model.CardID(rec.CardID),
				X:       rec.X,
				Y:       rec.Y,
				Content: model.Attributes(rec.Content),
			},
			SavedBy: model.ParticipantID(rec.SavedBy),
			SavedAt: rec.SavedAt,
		})
	}
	return result, nil
}
