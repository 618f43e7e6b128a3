// Package internal holds helpers shared by the authcore root package and
// its stores.
package internal

import (
	"crypto/rand"
	"encoding/base64"
)

const opaqueTokenSize = 32

// NewOpaqueToken returns a cryptographically random, URL-safe bearer
// string for single-use verification tokens. 32 random bytes encode to 43
// characters of base64url, distinct from the dotted JWT format.
func NewOpaqueToken() (string, error) {
	var raw [opaqueTokenSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
