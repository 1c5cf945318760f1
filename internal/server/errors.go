package server

import (
	"net/http"

	apperrors "github.com/kamiza/kamiza/internal/errors"
)

// HandleError renders err as the API error body. It is also installed as the
// handlers' responder, so every error leaves through one place.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

// respondThrottled sends throttle rejections down the same path, so they are
// logged with the client id and counted in errors_total.
func respondThrottled(w http.ResponseWriter, r *http.Request, clientID, message string) {
	envelope := apperrors.NewTooManyRequestsError(message)
	if withClient, err := envelope.WithContext(map[string]interface{}{"client_id": clientID}); err == nil {
		envelope = withClient
	}
	HandleError(w, r, envelope)
}
