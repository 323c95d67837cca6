// Package session carries the caller's upstream credentials through the
// request. The gateway never mints tokens; it forwards the bearer token the
// admin UI obtained from the POS backend, and rejects requests whose token is
// visibly expired before spending an upstream round trip on them.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the explicit credential object handed to upstream client calls.
type Session struct {
	token string
}

type ctxKey struct{}

// FromBearerHeader parses an Authorization header value.
func FromBearerHeader(header string) (Session, bool) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return Session{}, false
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return Session{}, false
	}
	return Session{token: raw}, true
}

// Token returns the raw bearer token.
func (s Session) Token() string {
	return s.token
}

// AuthorizationValue renders the header value forwarded upstream.
func (s Session) AuthorizationValue() string {
	return "Bearer " + s.token
}

// Expired inspects the token's exp claim without verifying the signature; the
// upstream backend owns verification. Opaque tokens report false here and are
// judged upstream.
func (s Session) Expired(now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// WithSession stores the session in the request context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext retrieves the session placed by the auth middleware.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
