package handlers

import (
	"errors"
	"net/http"

	"github.com/kamiza/kamiza/internal/backend"
	apperrors "github.com/kamiza/kamiza/internal/errors"
)

// ReducedEvents handles GET /api/events.
func (a *API) ReducedEvents(w http.ResponseWriter, r *http.Request) {
	raw, err := a.Backend.ReducedEvents(r.Context())
	if err != nil {
		respondWithBackendError(w, r, err, "Events konnten nicht geladen werden")
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

// Events handles GET /api/event.
func (a *API) Events(w http.ResponseWriter, r *http.Request) {
	events, err := a.Backend.Events(r.Context())
	if err != nil {
		respondWithBackendError(w, r, err, "Events konnten nicht geladen werden")
		return
	}
	if events == nil {
		events = []backend.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// respondWithBackendError maps booking API failures onto envelopes.
func respondWithBackendError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		respondWithError(w, r, apperrors.WrapUnauthorized(r.Context(), err, "Invalid credentials"))
	case errors.Is(err, backend.ErrNotConfigured), errors.Is(err, backend.ErrUnavailable):
		respondWithError(w, r, apperrors.WrapServiceUnavailable(r.Context(), err, message))
	default:
		respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err, message))
	}
}

func writeRaw(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}
