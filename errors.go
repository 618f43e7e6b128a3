package authcore

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vipconnect/authcore/jwt"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called on an
	// engine that was not fully constructed through [Builder.Build].
	ErrEngineNotReady = errors.New("engine not ready")

	// ErrInvalidCredentials is returned by Login for both an unknown email
	// and a wrong password. The message is intentionally identical for the
	// two cases so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountRestricted is returned when an account exists but its
	// status is not active (suspended, banned, pending verification).
	ErrAccountRestricted = errors.New("account is suspended or banned")

	// ErrEmailTaken is returned when the registration email is already in
	// use, case-insensitively.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUsernameTaken is returned when the registration username is
	// already in use, case-insensitively.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrAgeRestriction is returned when the registrant is under 18 on the
	// day of registration.
	ErrAgeRestriction = errors.New("you must be at least 18 years old to register")

	// ErrUnauthorized covers refresh-token failures: the token is
	// malformed, expired, revoked by logout, or superseded by rotation.
	ErrUnauthorized = errors.New("invalid or expired refresh token")

	// ErrInvalidOrExpiredToken is returned when a verification or reset
	// token is absent from the store, whether it expired, was already
	// redeemed, or never existed.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrAccountNotFound is returned when an operation references an
	// account that no longer exists.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnauthenticated is returned by CurrentAccount when the context
	// carries no authenticated account.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrStoreUnavailable is returned when the ephemeral store cannot be
	// reached on a path that must not degrade silently (token redemption,
	// refresh rotation). Issuance paths degrade by logging instead.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// ValidationError enumerates every violated input rule, not just the
// first, mirroring the register/login request validators.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NewValidationError builds a [ValidationError] from one or more rule
// violations.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// HTTPStatus maps the authcore error taxonomy onto HTTP status codes the
// way the platform API reports failures. Unknown errors map to 500.
func HTTPStatus(err error) int {
	var verr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, ErrAgeRestriction):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenMalformed):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountRestricted):
		return http.StatusForbidden
	case errors.Is(err, ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Messages flattens an error into the message list the API boundary
// returns alongside the status code.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Violations
	}
	return []string{err.Error()}
}

func wrapUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
