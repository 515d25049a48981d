package context

import (
	"context"

	"dockboard/models"
)

type sessionKey struct{}

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// UserIDFromContext returns the signed-in user's ID, or nil.
func UserIDFromContext(ctx context.Context) *int64 {
	s, ok := GetSessionFromContext(ctx)
	if !ok || s.UserID <= 0 {
		return nil
	}
	id := s.UserID
	return &id
}
