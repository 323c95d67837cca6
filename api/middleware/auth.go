package middleware

import (
	"net/http"
	"time"

	"github.com/davidrangel/poscenter-gateway/api/responses"
	"github.com/davidrangel/poscenter-gateway/pkg/auth/session"
	pkgerrors "github.com/davidrangel/poscenter-gateway/pkg/errors"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
)

// Auth extracts the caller's bearer token and seeds the request context with
// it. The token is never verified here; the upstream backend is the authority
// and a 401 from it is surfaced unchanged. Visibly expired tokens are rejected
// before spending an upstream round trip.
func Auth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromBearerHeader(r.Header.Get("Authorization"))
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			if sess.Expired(time.Now()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
				return
			}

			ctx := session.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
