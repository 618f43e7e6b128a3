// Package stores contains the Redis-backed ephemeral state used by the
// authcore engine: the per-account tracked refresh token and the
// single-use verification/reset token mappings.
//
// Both stores report backend unavailability ([ErrUnavailable]) distinctly
// from a missing key ([ErrNotFound]) so the engine can apply per-component
// degradation policy.
package stores
