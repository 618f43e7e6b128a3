package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Login authenticates an email/password pair and issues a token pair.
//
// An unknown email and a wrong password both return ErrInvalidCredentials;
// callers cannot distinguish the two. A suspended or deleted account fails
// with ErrAccountRestricted before the password is checked. With rememberMe
// the refresh token gets the extended TTL.
func (e *Engine) Login(ctx context.Context, email, password string, rememberMe bool) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	cctx, cancel := e.credentialCtx(ctx)
	defer cancel()

	account, err := e.accounts.GetByEmail(cctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if account.Status != StatusActive {
		return nil, ErrAccountRestricted
	}

	hash, err := e.accounts.GetPasswordHash(cctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("loading password hash: %w", err)
	}
	ok, err := e.hasher.Verify(password, hash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	refreshTTL := e.config.JWT.RefreshTTL
	if rememberMe {
		refreshTTL = e.config.JWT.RememberMeRefreshTTL
	}

	tokens, err := e.issueTokenPair(ctx, account, refreshTTL)
	if err != nil {
		return nil, err
	}

	e.emitAnalytics(ctx, "login", account.ID)

	return &AuthResult{Account: account, Tokens: tokens}, nil
}

// Logout discards the account's tracked refresh token. It is idempotent
// and always succeeds from the caller's perspective: a store outage is
// logged, not surfaced, since the access token expires on its own.
func (e *Engine) Logout(ctx context.Context, accountID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if accountID == "" {
		return nil
	}

	sctx, cancel := e.ephemeralCtx(ctx)
	defer cancel()

	if err := e.refreshStore.Clear(sctx, accountID); err != nil {
		e.logger.Warn("refresh token revocation failed during logout",
			"account_id", accountID, "error", err)
	}

	e.emitAnalytics(ctx, "logout", accountID)
	return nil
}
