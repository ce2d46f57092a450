package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	authgate "github.com/mwhitlock/authgate"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the identity attached by [Authenticate].
func AuthResultFromContext(ctx context.Context) (*authgate.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*authgate.AuthResult)
	return res, ok
}

// Authenticate returns middleware that resolves the caller's identity and
// attaches it to the request context. The artifact is taken from the
// Authorization bearer header, or — in session mode — from the configured
// session cookie. Expired, malformed, and badly-signed tokens are all
// rejected with the same 401; the sub-reason is never exposed.
func Authenticate(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			artifact, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok && engine.Mode() == authgate.ModeSession {
				if cookie, err := r.Cookie(engine.SessionCookieName()); err == nil && cookie.Value != "" {
					artifact, ok = cookie.Value, true
				}
			}
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Authenticate(r.Context(), artifact)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles returns middleware that rejects requests whose resolved
// identity is missing or whose role is not in allowed. Both cases return
// 403: a caller that authenticated but lacks the role, and a mis-ordered
// chain with no identity attached, look identical from the outside.
func RequireRoles(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := AuthResultFromContext(r.Context())
			if !ok || res == nil || !slices.Contains(allowed, res.Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
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
