package middleware

import (
	"context"
	"net/http"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// Guarder evaluates access for the current session. *goAuthClient.Manager
// satisfies it.
type Guarder interface {
	Guard(req goAuthClient.AccessRequirement) goAuthClient.GuardDecision
	User() *goAuthClient.User
}

type userContextKey struct{}

// UserFromContext returns the user RequireSession admitted.
func UserFromContext(ctx context.Context) (*goAuthClient.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*goAuthClient.User)
	return u, ok
}

// RequireSession serves next only when the session satisfies req. While the
// session is still being restored it answers 503 with Retry-After, without a
// session 401, and with insufficient rights 403.
func RequireSession(g Guarder, req goAuthClient.AccessRequirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			switch g.Guard(req) {
			case goAuthClient.GuardAllowed:
			case goAuthClient.GuardPending:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session loading", http.StatusServiceUnavailable)
				return
			case goAuthClient.GuardForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			default:
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, g.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
