// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/middleware"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
)

// HasRole allows only principals holding one of roles. Mount it after
// middleware.Authenticate.
func HasRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	message := "Forbidden"
	if len(roles) == 1 && roles[0] == auth.RoleAdmin {
		message = "Admins only."
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Unauthorized(w, "Missing or invalid token")
				return
			}
			if !allowed[role] {
				response.Forbidden(w, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly is HasRole(auth.RoleAdmin).
func AdminOnly() func(http.Handler) http.Handler {
	return HasRole(auth.RoleAdmin)
}
