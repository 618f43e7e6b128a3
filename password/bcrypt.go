// Package password wraps bcrypt hashing for account credentials. The
// cost factor is a deployment-wide configuration value: raising it slows
// hashing adaptively as hardware improves. Verification is constant-time.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the platform's production setting.
const DefaultCost = 12

// bcrypt ignores everything past 72 bytes; reject instead of silently
// truncating.
const maxPasswordBytes = 72

// Hasher computes and verifies bcrypt password hashes at a fixed cost.
// Safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher returns a [Hasher] with the given bcrypt cost. A cost of 0
// selects [DefaultCost].
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash returns the salted bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches encodedHash. A mismatch is
// (false, nil); only unparseable hashes return an error.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// Cost returns the configured cost factor.
func (h *Hasher) Cost() int {
	return h.cost
}
