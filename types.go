package authcore

import (
	"context"
	"io"
	"time"

	internalanalytics "github.com/vipconnect/authcore/internal/analytics"
	"github.com/vipconnect/authcore/jwt"
)

// Identity is the claim set carried by a verified access token, as
// returned by [Engine.Authenticate].
type Identity = jwt.Identity

// AccountType classifies an account's role on the platform.
type AccountType string

const (
	// AccountTypeFan is a subscriber account.
	AccountTypeFan AccountType = "fan"
	// AccountTypeCreator is a content-publishing account.
	AccountTypeCreator AccountType = "creator"
	// AccountTypeAdmin is a platform administrator account.
	AccountTypeAdmin AccountType = "admin"
	// AccountTypeModerator is a content-moderation account.
	AccountTypeModerator AccountType = "moderator"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeFan, AccountTypeCreator, AccountTypeAdmin, AccountTypeModerator:
		return true
	}
	return false
}

// AccountStatus represents the lifecycle state of an account.
//
// Transitions: pending_verification → active (email verify);
// active ⇄ suspended and active/suspended → banned are external moderation
// actions; banned is terminal. Only active accounts may log in or refresh.
type AccountStatus string

const (
	// StatusActive allows login and token refresh.
	StatusActive AccountStatus = "active"
	// StatusSuspended blocks login until a moderator lifts the suspension.
	StatusSuspended AccountStatus = "suspended"
	// StatusBanned permanently blocks the account.
	StatusBanned AccountStatus = "banned"
	// StatusPendingVerification marks an account awaiting email
	// verification. Registration currently creates accounts as active;
	// this status exists for moderation tooling.
	StatusPendingVerification AccountStatus = "pending_verification"
)

// Account is the identity record exposed by the engine. It never carries
// the password hash; that is reachable only through
// [AccountProvider.GetPasswordHash].
type Account struct {
	ID            string        `json:"id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	AccountType   AccountType   `json:"accountType"`
	Status        AccountStatus `json:"accountStatus"`
	EmailVerified bool          `json:"emailVerified"`
	AgeVerified   bool          `json:"ageVerified"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewAccount is the input to [AccountProvider.CreateAccount]. Username and
// Email are already lowercase-normalized by the engine.
type NewAccount struct {
	Username      string
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	AccountType   AccountType
	Status        AccountStatus
	EmailVerified bool
	AgeVerified   bool
}

// AccountProvider is the narrow credential-store contract the engine
// requires. Implementations must guarantee:
//
//   - CreateAccount writes the account record and its profile record
//     atomically; if either write fails, neither persists.
//   - Username and email uniqueness is enforced at write time: two
//     concurrent CreateAccount calls with the same email yield exactly one
//     success and one [ErrEmailTaken] (same for username).
//   - Lookup methods return [ErrAccountNotFound] for missing records,
//     never a nil account with nil error.
//
// The pgstore subpackage provides a PostgreSQL implementation.
type AccountProvider interface {
	CreateAccount(ctx context.Context, input NewAccount) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	SetEmailVerified(ctx context.Context, id string, verified bool) (*Account, error)
	GetPasswordHash(ctx context.Context, id string) (string, error)
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
}

// NotificationSender dispatches transactional email. The engine invokes it
// fire-and-forget: errors are logged and never fail the primary operation.
// The mail subpackage provides an SMTP implementation.
type NotificationSender interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// NoOpSender discards all notifications. Used when no sender is wired.
type NoOpSender struct{}

// SendVerificationEmail implements [NotificationSender].
func (NoOpSender) SendVerificationEmail(context.Context, string, string) error { return nil }

// SendPasswordResetEmail implements [NotificationSender].
func (NoOpSender) SendPasswordResetEmail(context.Context, string, string) error { return nil }

// TokenPair is the credential bundle returned by register, login, and
// refresh. Both tokens are opaque bearer strings to external callers;
// ExpiresIn is the access-token lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// RegisterInput is the input to [Engine.Register].
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	AccountType     AccountType
	BirthDate       time.Time
	AgreeToTerms    bool
}

// AuthResult bundles the account view and fresh token pair returned by
// [Engine.Register] and [Engine.Login].
type AuthResult struct {
	Account *Account
	Tokens  TokenPair
}

// AnalyticsEvent is a best-effort usage event (login, logout, register)
// emitted by the engine.
type AnalyticsEvent = internalanalytics.Event

// AnalyticsSink receives [AnalyticsEvent] values from the engine's async
// dispatcher.
type AnalyticsSink = internalanalytics.Sink

// NoOpAnalyticsSink silently discards all events.
type NoOpAnalyticsSink = internalanalytics.NoOpSink

// ChannelAnalyticsSink is a buffered channel-based [AnalyticsSink].
type ChannelAnalyticsSink = internalanalytics.ChannelSink

// JSONWriterAnalyticsSink writes JSON-encoded events, one per line.
type JSONWriterAnalyticsSink = internalanalytics.JSONWriterSink

// NewChannelAnalyticsSink creates a [ChannelAnalyticsSink] with the given
// buffer capacity.
func NewChannelAnalyticsSink(buffer int) *ChannelAnalyticsSink {
	return internalanalytics.NewChannelSink(buffer)
}

// NewJSONWriterAnalyticsSink creates a [JSONWriterAnalyticsSink] writing
// to w.
func NewJSONWriterAnalyticsSink(w io.Writer) *JSONWriterAnalyticsSink {
	return internalanalytics.NewJSONWriterSink(w)
}
