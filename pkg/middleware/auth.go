package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/logger"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
)

// TokenParser turns a bearer token into a principal.
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the resulting principal in the request context.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				response.Unauthorized(w, "Missing or invalid token")
				return
			}

			p, err := parser.Parse(token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("token rejected", "error", err)
				response.Unauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RoleFromCtx returns the caller's role set by Authenticate.
func RoleFromCtx(r *http.Request) (auth.Role, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	return p.Role, ok
}

// UserIDFromCtx returns the caller's user id set by Authenticate.
func UserIDFromCtx(r *http.Request) (uint, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	return p.UserID, ok
}
