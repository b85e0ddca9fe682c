package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxIsAdmin contextKey = "is_admin"
	ctxTokenID contextKey = "token_id"
)

// UserIDFromContext returns the authenticated user ID, or uuid.Nil when the
// request is unauthenticated.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// IsAdminFromContext reports whether the authenticated user carries the
// admin flag.
func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxIsAdmin).(bool); ok {
		return v
	}
	return false
}

// TokenIDFromContext returns the jti of the presented access token.
func TokenIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTokenID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity seeds the context with the authenticated identity. Exposed
// for handler tests.
func WithIdentity(ctx context.Context, userID uuid.UUID, isAdmin bool, tokenID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxIsAdmin, isAdmin)
	return context.WithValue(ctx, ctxTokenID, tokenID)
}
