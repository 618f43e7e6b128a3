package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vipconnect/authcore/internal/stores"
)

// ForgotPasswordMessage is returned by ForgotPassword whether or not the
// email belongs to an account, so the endpoint cannot be used to probe
// which addresses are registered.
const ForgotPasswordMessage = "if the email exists, a password reset link has been sent"

// ForgotPassword issues a single-use password reset token for the given
// email and dispatches it, if the email belongs to an account. The returned
// message is identical either way.
func (e *Engine) ForgotPassword(ctx context.Context, email string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ForgotPasswordMessage, nil
	}

	cctx, cancel := e.credentialCtx(ctx)
	defer cancel()

	account, err := e.accounts.GetByEmail(cctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ForgotPasswordMessage, nil
		}
		return "", fmt.Errorf("looking up account: %w", err)
	}

	sctx, scancel := e.ephemeralCtx(ctx)
	defer scancel()

	token, err := e.tokenStore.Issue(sctx, stores.PurposePasswordReset,
		account.ID, e.config.Verification.ResetTokenTTL)
	if err != nil {
		// Degraded: the caller still gets the uniform message, the mail
		// just never arrives. Surfacing the outage here would leak
		// account existence.
		e.logger.Warn("password reset token issuance failed, continuing degraded",
			"account_id", account.ID, "error", err)
		return ForgotPasswordMessage, nil
	}

	addr := account.Email
	e.dispatchEmail("password_reset", addr, func(ctx context.Context) error {
		return e.notifier.SendPasswordResetEmail(ctx, addr, token)
	})

	e.emitAnalytics(ctx, "password_reset_requested", account.ID)

	return ForgotPasswordMessage, nil
}

// ResetPassword redeems a single-use reset token and replaces the
// account's password hash. Any tracked refresh token is revoked, so every
// session established before the reset loses its ability to refresh.
// Validation runs before redemption so a rejected request leaves the
// token usable.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	if !strongPassword(newPassword) {
		return &ValidationError{Violations: []string{passwordRuleMsg}}
	}
	if newPassword != confirmPassword {
		return &ValidationError{Violations: []string{"passwords do not match"}}
	}

	sctx, scancel := e.ephemeralCtx(ctx)
	defer scancel()

	accountID, err := e.tokenStore.Redeem(sctx, stores.PurposePasswordReset, token)
	switch {
	case err == nil:
	case errors.Is(err, stores.ErrNotFound):
		return ErrInvalidOrExpiredToken
	default:
		return wrapUnavailable(err)
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	cctx, cancel := e.credentialCtx(ctx)
	defer cancel()

	if err := e.accounts.UpdatePasswordHash(cctx, accountID, hash); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("updating password hash: %w", err)
	}

	// The redemption deadline may be spent by now (bcrypt plus the
	// credential-store write), so the revoke gets its own.
	rctx, rcancel := e.ephemeralCtx(ctx)
	defer rcancel()

	if err := e.refreshStore.Clear(rctx, accountID); err != nil {
		e.logger.Warn("refresh token revocation failed after password reset",
			"account_id", accountID, "error", err)
	}

	e.emitAnalytics(ctx, "password_reset", accountID)
	return nil
}
