package auth

import "context"

type ctxKey int

const (
	tokenKey ctxKey = iota
	callerIDKey
)

// WithToken attaches the caller's identity token. The service layer treats
// it as opaque; validation happens before it reaches the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the identity token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// WithCallerID attaches the id of the calling user.
func WithCallerID(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerIDKey, callerID)
}

// CallerIDFromContext returns the calling user's id, if any.
func CallerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerIDKey).(string)
	return id, ok && id != ""
}
