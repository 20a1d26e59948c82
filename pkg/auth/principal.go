package auth

import (
	"context"

	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uint
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Owns reports whether the principal is the owner identified by userID.
func (p Principal) Owns(userID uint) bool { return p.UserID != 0 && p.UserID == userID }

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequireRole fails with a Forbidden error unless p holds role.
func RequireRole(p Principal, role Role) error {
	if p.Role == role {
		return nil
	}
	if role == RoleAdmin {
		return apperr.Forbidden("Admins only.")
	}
	return apperr.Forbidden("Forbidden")
}
