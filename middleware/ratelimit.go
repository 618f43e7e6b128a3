package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vipconnect/authcore"
	"github.com/vipconnect/authcore/ratelimit"
)

// RateLimit returns middleware enforcing the limiter's sliding window,
// keyed by client IP. Allowed requests carry X-RateLimit-* headers;
// rejected ones get a 429 with Retry-After. The client IP is also
// attached to the request context for analytics.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			res := limiter.Check(r.Context(), ip)

			limit := int64(limiter.Limit())
			remaining := limit - res.Count - 1
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))

			if !res.Allowed {
				retryAfter := time.Until(res.ResetTime)
				if retryAfter < time.Second {
					retryAfter = time.Second
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				http.Error(w, "too many requests, please try again later", http.StatusTooManyRequests)
				return
			}

			ctx := authcore.WithClientIP(r.Context(), ip)
			if ua := r.UserAgent(); ua != "" {
				ctx = authcore.WithUserAgent(ctx, ua)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP prefers the leftmost X-Forwarded-For entry, falling back to
// the socket peer address. Only trust the header behind a proxy that
// sets it.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
