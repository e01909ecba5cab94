package domain

import "context"

type userIDKey struct{}

// ContextWithUserID returns a context carrying the authenticated user id.
// The identity layer is trusted; the exchange core never re-authenticates.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}
