package handlers

import (
	"net/http"
	"sync/atomic"

	apperrors "github.com/kamiza/kamiza/internal/errors"
)

type errorResponder func(http.ResponseWriter, *http.Request, error)

var responder atomic.Pointer[errorResponder]

// SetHTTPErrorResponder routes handler errors through fn. Nil restores
// apperrors.RespondWithError.
func SetHTTPErrorResponder(fn func(http.ResponseWriter, *http.Request, error)) {
	if fn == nil {
		responder.Store(nil)
		return
	}
	r := errorResponder(fn)
	responder.Store(&r)
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	if fn := responder.Load(); fn != nil {
		(*fn)(w, r, err)
		return
	}
	apperrors.RespondWithError(w, r, err)
}
