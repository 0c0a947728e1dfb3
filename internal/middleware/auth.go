package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/capitalstack/directory/internal/contextkeys"
	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/handler"
)

// CallerResolver turns a bearer token into the current caller.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (domain.Caller, error)
}

// Auth creates a JWT authentication middleware. The resolved caller is
// stored in the request context under contextkeys.Caller.
func Auth(resolver CallerResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handler.Error(w, domain.ErrAuthenticationRequired("no token provided"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				handler.Error(w, domain.ErrAuthenticationRequired("invalid authorization header"))
				return
			}

			caller, err := resolver.ResolveCaller(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				handler.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), contextkeys.Caller, caller)
			ctx = context.WithValue(ctx, contextkeys.UserID, caller.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
