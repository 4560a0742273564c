package api

import "context"

type contextKey int

const ctxKeyUserID contextKey = 0

// ContextWithUserID stores the authenticated user id on the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

// UserIDFrom returns the authenticated user id, or "" if unauthenticated.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}
