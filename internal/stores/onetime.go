package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vipconnect/authcore/internal"
)

// TokenPurpose namespaces single-use tokens in Redis.
type TokenPurpose string

const (
	// PurposeEmailVerification keys 24-hour email-confirmation tokens.
	PurposeEmailVerification TokenPurpose = "email_verification"
	// PurposePasswordReset keys 1-hour password-reset tokens.
	PurposePasswordReset TokenPurpose = "password_reset"
)

// OneTimeTokenStore issues and redeems opaque single-use tokens mapping
// to an account ID. Redemption is atomic (GETDEL): two calls racing on
// the same token yield exactly one success.
type OneTimeTokenStore struct {
	redis redis.UniversalClient
}

// NewOneTimeTokenStore creates a store backed by the given Redis client.
func NewOneTimeTokenStore(client redis.UniversalClient) *OneTimeTokenStore {
	return &OneTimeTokenStore{redis: client}
}

func tokenKey(purpose TokenPurpose, token string) string {
	return string(purpose) + ":" + token
}

// Issue generates a fresh opaque token for the account, stores the
// mapping under the purpose's namespace with the given TTL, and returns
// the token.
func (s *OneTimeTokenStore) Issue(ctx context.Context, purpose TokenPurpose, accountID string, ttl time.Duration) (string, error) {
	token, err := internal.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, tokenKey(purpose, token), accountID, ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return token, nil
}

// Redeem consumes the token and returns the mapped account ID. The
// mapping is deleted in the same Redis command, so a second redemption
// fails with [ErrNotFound].
func (s *OneTimeTokenStore) Redeem(ctx context.Context, purpose TokenPurpose, token string) (string, error) {
	accountID, err := s.redis.GetDel(ctx, tokenKey(purpose, token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return accountID, nil
}
