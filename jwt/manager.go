// Package jwt mints and verifies the signed access and refresh tokens
// used by the authcore engine. Tokens are HS256-signed with a shared
// secret and carry the identity claims the platform API needs: account
// id, email, and account type.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type claim values. A refresh token presented where an access
// token is expected (or vice versa) fails verification.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned for tokens that fail to parse, carry a
	// bad signature, an unexpected algorithm, or the wrong type claim.
	ErrTokenMalformed = errors.New("token malformed")
)

// Config holds issuer parameters. Instances are immutable after
// [NewManager].
type Config struct {
	// Secret is the shared HS256 signing key. Must be at least 32 bytes.
	Secret []byte
	// AccessTTL is the access-token lifetime.
	AccessTTL time.Duration
	// Issuer is stamped as the iss claim and enforced on parse.
	Issuer string
}

// Claims is the claim set carried by both token kinds.
type Claims struct {
	AccountID   string `json:"uid"`
	Email       string `json:"email"`
	AccountType string `json:"act"`
	TokenType   string `json:"typ"`
	jwt.RegisteredClaims
}

// Identity is the claim input for token creation.
type Identity struct {
	AccountID   string
	Email       string
	AccountType string
}

// Manager issues and verifies token pairs. Safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a token [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("access TTL must be positive")
	}
	return &Manager{config: cfg}, nil
}

// CreateAccess mints an access token for id valid for the configured
// access TTL.
func (m *Manager) CreateAccess(id Identity) (string, error) {
	return m.create(id, TypeAccess, m.config.AccessTTL)
}

// CreateRefresh mints a refresh token for id valid for ttl. The caller
// chooses ttl because remember-me logins extend it.
func (m *Manager) CreateRefresh(id Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("refresh TTL must be positive")
	}
	return m.create(id, TypeRefresh, ttl)
}

func (m *Manager) create(id Identity, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID:   id.AccountID,
		Email:       id.Email,
		AccountType: id.AccountType,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseAccess verifies an access token and returns its claims.
func (m *Manager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, TypeAccess)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (m *Manager) ParseRefresh(token string) (*Claims, error) {
	return m.parse(token, TypeRefresh)
}

func (m *Manager) parse(tokenStr, wantType string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrTokenMalformed, claims.TokenType)
	}
	if claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrTokenMalformed)
	}
	return claims, nil
}
