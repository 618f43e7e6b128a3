package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vipconnect/authcore/internal/stores"
	"github.com/vipconnect/authcore/jwt"
)

// Refresh rotates a refresh token: the presented token must be a valid
// refresh-type JWT and must match the single token currently tracked for
// its account. On success the old token is atomically replaced by a new
// one, so presenting it again fails. A rotation race between two holders
// of the same token admits exactly one winner.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	accountID := claims.AccountID

	cctx, cancel := e.credentialCtx(ctx)
	defer cancel()

	account, err := e.accounts.GetByID(cctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if account.Status != StatusActive {
		return nil, ErrAccountRestricted
	}

	identity := jwt.Identity{
		AccountID:   account.ID,
		Email:       account.Email,
		AccountType: string(account.AccountType),
	}
	access, err := e.jwtManager.CreateAccess(identity)
	if err != nil {
		return nil, fmt.Errorf("minting access token: %w", err)
	}
	next, err := e.jwtManager.CreateRefresh(identity, e.config.JWT.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("minting refresh token: %w", err)
	}

	sctx, scancel := e.ephemeralCtx(ctx)
	defer scancel()

	err = e.refreshStore.Replace(sctx, accountID, refreshToken, next, e.config.JWT.RefreshTTL)
	switch {
	case err == nil:
	case errors.Is(err, stores.ErrNotFound), errors.Is(err, stores.ErrTokenMismatch):
		return nil, ErrUnauthorized
	default:
		return nil, wrapUnavailable(err)
	}

	e.emitAnalytics(ctx, "token_refresh", accountID)

	return &AuthResult{
		Account: account,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: next,
			ExpiresIn:    int64(e.config.JWT.AccessTTL.Seconds()),
		},
	}, nil
}
