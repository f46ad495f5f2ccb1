// Package idempotency remembers checkout results per client-supplied key
// so a retried submission does not insert a second batch.
package idempotency

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

// KeyCheckout is idem:checkout:{user_id}:{idempotency_key} -> pending | result JSON.
const KeyCheckout = "idem:checkout:%s:%s"

// DefaultTTL matches how long a client may safely retry a checkout.
const DefaultTTL = 24 * time.Hour

const pending = "pending"

// Store reserves, completes and releases checkout idempotency keys.
type Store interface {
	// Reserve claims key for userID. When the key already holds a finished
	// result it is returned with reserved=false. When another submission
	// holds the key, model.ErrDuplicateRequest is returned.
	Reserve(ctx context.Context, userID, key string) (existing *model.SubmitResult, reserved bool, err error)

	// Complete stores the result for a reserved key.
	Complete(ctx context.Context, userID, key string, result *model.SubmitResult) error

	// Release frees a reserved key after a failed submission.
	Release(ctx context.Context, userID, key string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Store on top of go-redis.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "idempotency").Logger(),
	}
}

func (s *redisStore) Reserve(ctx context.Context, userID, key string) (*model.SubmitResult, bool, error) {
	redisKey := fmt.Sprintf(KeyCheckout, userID, key)

	ok, err := s.client.SetNX(ctx, redisKey, pending, s.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return nil, true, nil
	}

	raw, err := s.client.Get(ctx, redisKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Released between SETNX and GET; the caller may retry.
			return nil, false, model.ErrDuplicateRequest
		}
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if raw == pending {
		s.logger.Warn().Str("user_id", userID).Str("key", key).Msg("checkout already in progress")
		return nil, false, model.ErrDuplicateRequest
	}

	var result model.SubmitResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode idempotent result: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("batch_id", result.BatchID.String()).
		Msg("replaying checkout result")
	return &result, false, nil
}

func (s *redisStore) Complete(ctx context.Context, userID, key string, result *model.SubmitResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode checkout result: %w", err)
	}
	if err := s.client.Set(ctx, fmt.Sprintf(KeyCheckout, userID, key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkout result: %w", err)
	}
	return nil
}

func (s *redisStore) Release(ctx context.Context, userID, key string) error {
	if err := s.client.Del(ctx, fmt.Sprintf(KeyCheckout, userID, key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
