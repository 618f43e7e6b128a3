package authcore

import (
	"errors"
	"time"
)

// Config carries all engine tuning parameters. Populate it once before
// [Builder.Build]; the engine treats it as immutable afterwards.
type Config struct {
	JWT          JWTConfig
	Password     PasswordConfig
	Verification VerificationConfig
	RateLimit    RateLimitConfig
	Timeouts     TimeoutConfig
	Analytics    AnalyticsConfig
}

// JWTConfig controls signed-token issuance.
type JWTConfig struct {
	// Secret is the shared HS256 signing key. Required.
	Secret []byte
	// AccessTTL is the access-token lifetime.
	AccessTTL time.Duration
	// RefreshTTL is the refresh-token lifetime for a normal login.
	RefreshTTL time.Duration
	// RememberMeRefreshTTL replaces RefreshTTL when the login requests
	// "remember me".
	RememberMeRefreshTTL time.Duration
	// Issuer is the iss claim stamped on every token.
	Issuer string
}

// PasswordConfig controls the bcrypt hasher.
type PasswordConfig struct {
	// Cost is the bcrypt cost factor. Deployment-wide, not per-account.
	Cost int
}

// VerificationConfig controls single-use token lifetimes.
type VerificationConfig struct {
	// EmailTokenTTL bounds email-verification tokens.
	EmailTokenTTL time.Duration
	// ResetTokenTTL bounds password-reset tokens.
	ResetTokenTTL time.Duration
}

// RateLimitConfig is the default window applied by the rate-limit
// middleware when callers do not construct their own limiter.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// TimeoutConfig bounds individual store calls. A credential-store timeout
// fails the request; an ephemeral-store timeout degrades per component
// policy.
type TimeoutConfig struct {
	CredentialStore time.Duration
	EphemeralStore  time.Duration
}

// AnalyticsConfig controls the async analytics dispatcher.
type AnalyticsConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is
	// saturated. Recommended in production: analytics must never stall an
	// auth flow.
	DropIfFull bool
}

// DefaultConfig returns the production defaults: 15m access tokens, 7d
// refresh (30d with remember-me), bcrypt cost 12, 24h email-verification
// tokens, 1h reset tokens.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:            15 * time.Minute,
			RefreshTTL:           7 * 24 * time.Hour,
			RememberMeRefreshTTL: 30 * 24 * time.Hour,
			Issuer:               "vipconnect",
		},
		Password: PasswordConfig{
			Cost: 12,
		},
		Verification: VerificationConfig{
			EmailTokenTTL: 24 * time.Hour,
			ResetTokenTTL: time.Hour,
		},
		RateLimit: RateLimitConfig{
			Limit:  100,
			Window: 15 * time.Minute,
		},
		Timeouts: TimeoutConfig{
			CredentialStore: 5 * time.Second,
			EphemeralStore:  2 * time.Second,
		},
		Analytics: AnalyticsConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 bytes")
	}
	if cfg.JWT.AccessTTL <= 0 || cfg.JWT.RefreshTTL <= 0 {
		return errors.New("jwt TTLs must be positive")
	}
	if cfg.JWT.RememberMeRefreshTTL < cfg.JWT.RefreshTTL {
		return errors.New("remember-me refresh TTL must not be shorter than the default refresh TTL")
	}
	if cfg.Verification.EmailTokenTTL <= 0 || cfg.Verification.ResetTokenTTL <= 0 {
		return errors.New("verification token TTLs must be positive")
	}
	if cfg.Timeouts.CredentialStore <= 0 || cfg.Timeouts.EphemeralStore <= 0 {
		return errors.New("store timeouts must be positive")
	}
	return nil
}
