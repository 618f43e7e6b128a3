package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vipconnect/authcore"
)

type identityContextKey struct{}

// IdentityFromContext returns the authenticated identity attached by
// [RequireAuth].
func IdentityFromContext(ctx context.Context) (*authcore.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*authcore.Identity)
	return id, ok
}

// RequireAuth returns middleware that rejects requests lacking a valid
// bearer access token. On success it attaches the token's identity and
// account ID to the request context, so handlers can call
// [authcore.Engine.CurrentAccount] directly.
func RequireAuth(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := engine.Authenticate(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			ctx = authcore.WithAccountID(ctx, identity.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActiveAccount composes [RequireAuth] with a credential-store
// check: the account must still exist and be active. Use it on routes
// that must not honor tokens minted before a suspension or ban; plain
// [RequireAuth] stays stateless and cheaper.
func RequireActiveAccount(engine *authcore.Engine) func(http.Handler) http.Handler {
	auth := RequireAuth(engine)
	return func(next http.Handler) http.Handler {
		return auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, err := engine.CurrentAccount(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if account.Status != authcore.StatusActive {
				http.Error(w, "account is suspended or banned", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}
