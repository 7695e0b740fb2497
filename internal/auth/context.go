package auth

import (
	"context"

	"github.com/dukerupert/elms/internal/model"
)

type contextKey struct{}

type AuthContext struct {
	UserID    int64
	Name      string
	Role      model.Role
	SessionID int64
	Token     string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

// Actor names the signed-in user for activity entries and chat.
func Actor(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok || ac.Name == "" {
		return "anonymous"
	}
	return ac.Name
}

func IsAdmin(ctx context.Context) bool {
	return HasRole(ctx, model.RoleAdmin)
}

// HasRole reports whether the session's role is one of roles.
func HasRole(ctx context.Context, roles ...model.Role) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	for _, r := range roles {
		if ac.Role == r {
			return true
		}
	}
	return false
}
