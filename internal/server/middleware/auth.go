package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/observability"
)

// TokenValidator checks a session token against the booking API.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (bool, error)
}

type sessionTokenContextKey string

const SessionTokenContextKey sessionTokenContextKey = "session_token"

// Redirect targets used by RequireSession.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// RequireSession guards staff pages. A missing or rejected cookie redirects to
// the login page; a failed validation call redirects home.
func RequireSession(validator TokenValidator, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
				return
			}

			valid, err := validator.ValidateToken(r.Context(), cookie.Value)
			if err != nil {
				if observability.ServerLogger != nil {
					observability.ServerLogger.Warn("Session validation failed",
						zap.Error(err),
						zap.String("requestID", GetRequestID(r.Context())))
				}
				http.Redirect(w, r, HomePath, http.StatusTemporaryRedirect)
				return
			}
			if !valid {
				http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
				return
			}

			ctx := context.WithValue(r.Context(), SessionTokenContextKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken returns the validated session token stored by RequireSession.
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(SessionTokenContextKey).(string)
	return token
}
