package authcore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vipconnect/authcore/internal/analytics"
	"github.com/vipconnect/authcore/internal/stores"
	"github.com/vipconnect/authcore/jwt"
	"github.com/vipconnect/authcore/password"
)

// Engine is the auth flow orchestrator. It composes the credential store,
// password hasher, token issuer, refresh tracking, and single-use token
// stores behind the seven platform auth operations.
//
// Engine instances are immutable after [Builder.Build] and safe for
// concurrent use.
type Engine struct {
	config       Config
	accounts     AccountProvider
	refreshStore *stores.RefreshTokenStore
	tokenStore   *stores.OneTimeTokenStore
	jwtManager   *jwt.Manager
	hasher       *password.Hasher
	notifier     NotificationSender
	analytics    *analytics.Dispatcher
	logger       *slog.Logger

	notifyWG sync.WaitGroup

	// now is swapped in tests to pin the clock for age calculations.
	now func() time.Time
}

// Close drains the analytics dispatcher and waits for in-flight
// notification sends to finish.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.analytics.Close()
	e.notifyWG.Wait()
}

// AnalyticsDropped reports how many analytics events were discarded
// because the dispatcher buffer was full.
func (e *Engine) AnalyticsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.analytics.Dropped()
}

// credentialCtx bounds a credential-store call. The parent's cancellation
// is detached so a disconnecting caller cannot abandon a half-applied
// write; only the timeout remains.
func (e *Engine) credentialCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.config.Timeouts.CredentialStore)
}

// ephemeralCtx bounds an ephemeral-store call, likewise detached from the
// caller's cancellation.
func (e *Engine) ephemeralCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.config.Timeouts.EphemeralStore)
}

// issueTokenPair mints a fresh access/refresh pair for the account and
// tracks the refresh token, revoking any previously tracked one. A
// tracking failure is logged and the pair still issued: the ephemeral
// store being down must not block logins, it only means the refresh will
// not succeed until the store recovers.
func (e *Engine) issueTokenPair(ctx context.Context, account *Account, refreshTTL time.Duration) (TokenPair, error) {
	identity := jwt.Identity{
		AccountID:   account.ID,
		Email:       account.Email,
		AccountType: string(account.AccountType),
	}

	access, err := e.jwtManager.CreateAccess(identity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, err := e.jwtManager.CreateRefresh(identity, refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issuing refresh token: %w", err)
	}

	sctx, cancel := e.ephemeralCtx(ctx)
	defer cancel()
	if err := e.refreshStore.Track(sctx, account.ID, refresh, refreshTTL); err != nil {
		e.logger.Warn("refresh token tracking failed, continuing degraded",
			"account_id", account.ID, "error", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(e.config.JWT.AccessTTL.Seconds()),
	}, nil
}

// emitAnalytics queues a best-effort usage event. Never blocks the flow.
func (e *Engine) emitAnalytics(ctx context.Context, eventType, accountID string) {
	e.analytics.Emit(ctx, analytics.Event{
		Timestamp: e.now(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
	})
}

// dispatchEmail runs send on its own goroutine with a bounded lifetime.
// Failures are logged and suppressed: email delivery must never fail or
// roll back the primary operation.
func (e *Engine) dispatchEmail(kind, email string, send func(ctx context.Context) error) {
	e.notifyWG.Add(1)
	go func() {
		defer e.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			e.logger.Error("notification dispatch failed",
				"kind", kind, "email", email, "error", err)
		}
	}()
}
