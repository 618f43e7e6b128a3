// Package middleware exposes net/http middleware built on top of the
// authcore engine: bearer-token authentication and per-client rate
// limiting.
//
// # Guards
//
//   - [RequireAuth] — validates the Authorization bearer token and
//     attaches the caller's account ID to the request context. Stateless:
//     no store round trip.
//   - [RequireActiveAccount] — RequireAuth plus a credential-store check
//     that the account still exists and is active.
//   - [RateLimit] — enforces a sliding-window request limit keyed by
//     client IP, answering 429 with Retry-After when exceeded.
//
// This package translates HTTP semantics into engine calls. It makes no
// authorization decisions of its own.
package middleware
