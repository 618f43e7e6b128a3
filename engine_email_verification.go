package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vipconnect/authcore/internal/stores"
)

// VerifyEmail redeems a single-use email verification token and marks the
// account's email as verified. Redemption is atomic: a token redeems at
// most once, even under concurrent attempts.
func (e *Engine) VerifyEmail(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		return ErrInvalidOrExpiredToken
	}

	sctx, scancel := e.ephemeralCtx(ctx)
	defer scancel()

	accountID, err := e.tokenStore.Redeem(sctx, stores.PurposeEmailVerification, token)
	switch {
	case err == nil:
	case errors.Is(err, stores.ErrNotFound):
		return ErrInvalidOrExpiredToken
	default:
		return wrapUnavailable(err)
	}

	cctx, cancel := e.credentialCtx(ctx)
	defer cancel()

	if _, err := e.accounts.SetEmailVerified(cctx, accountID, true); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("marking email verified: %w", err)
	}

	e.emitAnalytics(ctx, "email_verified", accountID)
	return nil
}
