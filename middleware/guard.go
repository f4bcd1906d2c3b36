package middleware

import (
	"context"
	"net/http"
	"strings"

	phoneAuth "github.com/MrEthical07/phoneAuth"
)

// TokenParser verifies a session token. *phoneAuth.Engine implements it.
type TokenParser interface {
	ParseToken(token string) (*phoneAuth.Identity, error)
}

type identityContextKey struct{}

// IdentityFromContext returns the identity stored by [Guard].
func IdentityFromContext(ctx context.Context) (*phoneAuth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*phoneAuth.Identity)
	return id, ok
}

// WithIdentity stores id on ctx the way [Guard] does.
func WithIdentity(ctx context.Context, id *phoneAuth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// Guard rejects requests without a valid bearer token with 401 and passes
// the verified identity to next through the request context.
func Guard(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if parser == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := parser.ParseToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
