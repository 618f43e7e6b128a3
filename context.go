package authcore

import "context"

type accountIDContextKey struct{}
type clientIPContextKey struct{}
type userAgentContextKey struct{}

// WithAccountID attaches the authenticated caller's account ID to ctx.
// The middleware subpackage sets it after validating a bearer token;
// [Engine.CurrentAccount] reads it back.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDContextKey{}, accountID)
}

// AccountIDFromContext returns the authenticated account ID, if any.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, _ := ctx.Value(accountIDContextKey{}).(string)
	return id, id != ""
}

// WithClientIP attaches the caller's IP address to ctx. The engine stamps
// it on analytics events; the rate-limit middleware keys windows by it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx for analytics
// events.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	return ua
}
