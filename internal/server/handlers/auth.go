package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/backend"
	apperrors "github.com/kamiza/kamiza/internal/errors"
	"github.com/kamiza/kamiza/internal/forms"
	"github.com/kamiza/kamiza/internal/observability"
	"github.com/kamiza/kamiza/internal/server/middleware"
)

type loginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// Login handles POST /api/login and stores the access token in an HttpOnly
// cookie.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := forms.Decode(r.Body, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid login request"))
		return
	}

	session, err := a.Backend.Login(r.Context(), req.Nickname, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrInvalidCredentials) {
			if observability.ServerLogger != nil {
				observability.ServerLogger.Info("Login rejected",
					zap.String("nickname", req.Nickname),
					zap.String("requestID", middleware.GetRequestID(r.Context())))
			}
			respondWithError(w, r, apperrors.NewUnauthorizedError("Invalid credentials"))
			return
		}
		respondWithBackendError(w, r, err, "Login fehlgeschlagen")
		return
	}

	http.SetCookie(w, a.sessionCookie(session.AccessToken, int(a.Auth.CookieMaxAge.Seconds())))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Logout handles POST /api/logout.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, a.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) sessionCookie(value string, maxAge int) *http.Cookie {
	if maxAge == 0 {
		maxAge = 60 * 60 * 24
	}
	return &http.Cookie{
		Name:     a.CookieName(),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.Auth.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

// sessionToken reads the session cookie; empty when absent.
func (a *API) sessionToken(r *http.Request) string {
	if token := middleware.SessionToken(r.Context()); token != "" {
		return token
	}
	cookie, err := r.Cookie(a.CookieName())
	if err != nil {
		return ""
	}
	return cookie.Value
}
