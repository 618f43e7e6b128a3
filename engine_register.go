package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vipconnect/authcore/internal/stores"
)

// Register creates a new account.
//
// Every validation rule is checked and all violations reported together.
// Conflicts are checked email first, then username, both before creation;
// the credential store enforces uniqueness again at write time, so a
// duplicate racing past the pre-checks still yields exactly one success.
// Registrants must be 18 on the day of registration.
//
// On success the account is created active with emailVerified=false, a
// 24-hour single-use verification token is issued and dispatched
// (best-effort), and a fresh token pair is returned.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if violations := validateRegisterInput(input); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	username := strings.ToLower(input.Username)
	email := strings.ToLower(input.Email)

	cctx, cancel := e.credentialCtx(ctx)
	defer cancel()

	if _, err := e.accounts.GetByEmail(cctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("checking email uniqueness: %w", err)
	}
	if _, err := e.accounts.GetByUsername(cctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("checking username uniqueness: %w", err)
	}

	if ageYears(input.BirthDate, e.now()) < minimumAge {
		return nil, ErrAgeRestriction
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account, err := e.accounts.CreateAccount(cctx, NewAccount{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		AccountType:   input.AccountType,
		Status:        StatusActive,
		EmailVerified: false,
		AgeVerified:   false,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	e.issueEmailVerification(ctx, account)

	tokens, err := e.issueTokenPair(ctx, account, e.config.JWT.RefreshTTL)
	if err != nil {
		return nil, err
	}

	e.emitAnalytics(ctx, "register", account.ID)

	return &AuthResult{Account: account, Tokens: tokens}, nil
}

// issueEmailVerification writes a single-use verification token and
// dispatches the email. Both steps are best-effort: a Redis outage
// degrades registration to "no verification mail", it does not fail it.
func (e *Engine) issueEmailVerification(ctx context.Context, account *Account) {
	sctx, cancel := e.ephemeralCtx(ctx)
	defer cancel()

	token, err := e.tokenStore.Issue(sctx, stores.PurposeEmailVerification,
		account.ID, e.config.Verification.EmailTokenTTL)
	if err != nil {
		e.logger.Warn("email verification token issuance failed, continuing degraded",
			"account_id", account.ID, "error", err)
		return
	}

	email := account.Email
	e.dispatchEmail("verification", email, func(ctx context.Context) error {
		return e.notifier.SendVerificationEmail(ctx, email, token)
	})
}
