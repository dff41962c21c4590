package model

import "context"

// ContextManager carries the verified user identity through request contexts.
type ContextManager interface {
	SetUserIDToContext(ctx context.Context, userID string) context.Context
	GetUserIDFromContext(ctx context.Context) (string, bool)
}
