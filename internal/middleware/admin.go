package middleware

import (
	"net/http"

	"github.com/capitalstack/directory/internal/contextkeys"
	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/handler"
)

// AdminOnly middleware ensures the caller has the 'admin' role.
// Must be used after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := r.Context().Value(contextkeys.Caller).(domain.Caller)
		if !ok || caller.Role != "admin" {
			handler.Error(w, domain.ErrForbidden("forbidden: admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
