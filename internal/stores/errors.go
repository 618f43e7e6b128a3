package stores

import "errors"

var (
	// ErrNotFound means the key is absent: expired, redeemed, or never
	// written.
	ErrNotFound = errors.New("key not found")
	// ErrUnavailable means Redis could not be reached or answered with an
	// unexpected failure.
	ErrUnavailable = errors.New("redis unavailable")
	// ErrTokenMismatch means the presented refresh token is not the
	// currently tracked value for the account.
	ErrTokenMismatch = errors.New("refresh token mismatch")
)
