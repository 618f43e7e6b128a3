// Package ratelimit implements a sliding-window request limiter on Redis
// sorted sets. Each check prunes entries older than the window, counts the
// survivors, records the new hit, and refreshes the key's TTL — all in one
// transactional pipeline.
//
// The limiter fails open: when Redis is unreachable the check reports
// allowed, because platform availability takes priority over strict
// limiting during infrastructure degradation.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result is the outcome of a single rate-limit check.
type Result struct {
	// Allowed is true when the window still had room before this hit.
	Allowed bool
	// Count is the number of hits already in the window, excluding the
	// one just recorded.
	Count int64
	// ResetTime is when a window starting now would fully elapse.
	ResetTime time.Time
}

// Limiter counts hits per key over a sliding window. Safe for concurrent
// use.
type Limiter struct {
	redis  redis.UniversalClient
	limit  int
	window time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// New creates a [Limiter] allowing limit hits per window for each key.
// A nil logger falls back to [slog.Default].
func New(client redis.UniversalClient, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		redis:  client,
		limit:  limit,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// Check records a hit for key and reports whether it was within the
// limit. Redis failures log a warning and fail open.
func (l *Limiter) Check(ctx context.Context, key string) Result {
	now := l.now()
	windowStart := now.Add(-l.window)

	var card *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart.UnixMilli(), 10))
		card = pipe.ZCard(ctx, key)
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: fmt.Sprintf("%d-%d", now.UnixNano(), rand.Uint64()),
		})
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		l.logger.Warn("rate limit check failed, failing open", "key", key, "error", err)
		return Result{Allowed: true, ResetTime: now.Add(l.window)}
	}

	count := card.Val()
	return Result{
		Allowed:   count < int64(l.limit),
		Count:     count,
		ResetTime: now.Add(l.window),
	}
}

// Limit returns the configured per-window hit budget.
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}
