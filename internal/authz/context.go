package authz

import "context"

type userContextKey struct{}

// ContextWithUser stores the resolved UserContext in the request context.
func ContextWithUser(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, uc)
}

// UserFromContext extracts the UserContext from the request context.
func UserFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey{}).(*UserContext)
	return uc
}
