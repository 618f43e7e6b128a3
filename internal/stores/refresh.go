package stores

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh_token"

// RefreshTokenStore tracks exactly one current refresh token per account.
// A refresh token is usable only while it is byte-identical to the tracked
// value, so tracking a new token implicitly revokes the previous one and
// deleting the key revokes the session entirely.
type RefreshTokenStore struct {
	redis redis.UniversalClient
}

// NewRefreshTokenStore creates a store backed by the given Redis client.
func NewRefreshTokenStore(client redis.UniversalClient) *RefreshTokenStore {
	return &RefreshTokenStore{redis: client}
}

func refreshKey(accountID string) string {
	return refreshKeyPrefix + ":" + accountID
}

// Track records token as the account's current refresh token with the
// given TTL, replacing whatever was tracked before.
func (s *RefreshTokenStore) Track(ctx context.Context, accountID, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, refreshKey(accountID), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Current returns the tracked refresh token for the account, or
// [ErrNotFound] when none is tracked.
func (s *RefreshTokenStore) Current(ctx context.Context, accountID string) (string, error) {
	val, err := s.redis.Get(ctx, refreshKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

// Replace atomically swaps the tracked token from presented to next with
// the given TTL. It fails with [ErrNotFound] when nothing is tracked and
// [ErrTokenMismatch] when the tracked value differs from presented —
// including when a concurrent refresh rotated the token first, so two
// racing rotations of the same presented token yield exactly one success.
func (s *RefreshTokenStore) Replace(ctx context.Context, accountID, presented, next string, ttl time.Duration) error {
	const maxRetries = 4
	key := refreshKey(accountID)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, key).Result()
			if err != nil {
				return err
			}
			if subtle.ConstantTimeCompare([]byte(current), []byte(presented)) != 1 {
				return ErrTokenMismatch
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, next, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return ErrNotFound
			case errors.Is(err, ErrTokenMismatch):
				return ErrTokenMismatch
			default:
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}
		return nil
	}

	return ErrTokenMismatch
}

// Clear deletes the tracked refresh token. Absence is not an error, so
// logout stays idempotent.
func (s *RefreshTokenStore) Clear(ctx context.Context, accountID string) error {
	if err := s.redis.Del(ctx, refreshKey(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
