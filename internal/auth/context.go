// Package auth carries the acting principal: JWT issue/verify for the HTTP
// API and the context plumbing the remote store reads the owner from.
package auth

import "context"

type ctxKey string

const userIDKey ctxKey = "userID"

// WithUserID returns a child context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user's ID. The second result
// is false for unauthenticated contexts.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
