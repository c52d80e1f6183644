package auth

import (
	"context"
	"time"
)

// Session is the signed-in identity handed explicitly to every service call.
// It is created at login and stops being accepted once its token id is revoked.
type Session struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

func (s Session) IsZero() bool { return s.UserID == "" }

type sessionKey struct{}

// WithSession stores the session on the request context. Only the HTTP
// middleware does this; handlers pull it back out and pass it down by value.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && !s.IsZero()
}
