package domain

import "context"

type ctxKey int

const callerKey ctxKey = iota

// WithCaller stores the signed-in user on ctx.
func WithCaller(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, callerKey, user)
}

// CallerFromContext returns the signed-in user, or nil for anonymous requests.
func CallerFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(callerKey).(*User)
	return user
}
