package user

import "context"

type contextKey int

const userKey contextKey = 0

// NewContext stashes the authenticated user in ctx. The auth middleware is
// the only writer.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext returns the authenticated user stored by the auth middleware.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}
