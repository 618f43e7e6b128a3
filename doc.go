// Package authcore implements credential and session-token lifecycle
// management for the VIPConnect platform: registration with age and
// uniqueness checks, bcrypt password hashing, JWT access/refresh token
// issuance with server-side rotation tracking, single-use verification
// tokens for email confirmation and password reset, and a Redis-backed
// sliding-window rate limiter.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. The Engine holds no mutable shared state beyond
// configuration; correctness under concurrency rests on the atomicity
// guarantees of the backing stores (see [AccountProvider] and the Redis
// compare-and-swap used for refresh rotation).
//
// Persistent account storage is consumed through the narrow
// [AccountProvider] interface; a PostgreSQL implementation lives in the
// pgstore subpackage, and tests substitute in-memory fakes.
package authcore
