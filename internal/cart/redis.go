package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KeyCart is the Redis key of a user's cart document: cart:{user_id}.
const KeyCart = "cart:%s"

// redisStorage persists carts as JSON documents with a sliding TTL.
type redisStorage struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStorage creates a Redis-backed cart storage. A zero ttl keeps carts forever.
func NewRedisStorage(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Storage {
	return &redisStorage{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-storage").Logger(),
	}
}

func (r *redisStorage) Load(ctx context.Context, userID string) ([]model.CartLineItem, error) {
	raw, err := r.client.Get(ctx, fmt.Sprintf(KeyCart, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.CartLineItem{}, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var items []model.CartLineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt document is discarded rather than blocking the user.
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("discarding unreadable cart")
		return []model.CartLineItem{}, nil
	}
	return items, nil
}

func (r *redisStorage) Save(ctx context.Context, userID string, items []model.CartLineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := r.client.Set(ctx, fmt.Sprintf(KeyCart, userID), raw, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to write cart")
		return fmt.Errorf("failed to write cart: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Int("line_count", len(items)).
		Msg("cart saved")
	return nil
}

func (r *redisStorage) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, fmt.Sprintf(KeyCart, userID)).Err(); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
