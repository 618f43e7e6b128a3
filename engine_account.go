package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Authenticate validates a bearer access token and returns the identity it
// carries. Expired, malformed, wrong-type and refresh tokens all fail with
// ErrUnauthorized. The account itself is not loaded; use CurrentAccount
// for that.
func (e *Engine) Authenticate(tokenStr string) (*Identity, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, ErrUnauthorized
	}
	claims, err := e.jwtManager.ParseAccess(tokenStr)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return &Identity{
		AccountID:   claims.AccountID,
		Email:       claims.Email,
		AccountType: claims.AccountType,
	}, nil
}

// CurrentAccount loads the account identified by the request context, as
// attached by WithAccountID (typically via authentication middleware).
func (e *Engine) CurrentAccount(ctx context.Context) (*Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	accountID, ok := AccountIDFromContext(ctx)
	if !ok || accountID == "" {
		return nil, ErrUnauthenticated
	}

	cctx, cancel := e.credentialCtx(ctx)
	defer cancel()

	account, err := e.accounts.GetByID(cctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("loading account: %w", err)
	}
	return account, nil
}
