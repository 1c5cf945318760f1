package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondWithErrorUsesInstalledResponder(t *testing.T) {
	t.Cleanup(func() { SetHTTPErrorResponder(nil) })

	var got error
	SetHTTPErrorResponder(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	})

	want := errors.New("boom")
	rec := httptest.NewRecorder()
	respondWithError(rec, httptest.NewRequest(http.MethodGet, "/", nil), want)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected installed responder status 418, got %d", rec.Code)
	}
	if got != want {
		t.Fatalf("expected responder to receive %v, got %v", want, got)
	}

	SetHTTPErrorResponder(nil)
	rec = httptest.NewRecorder()
	respondWithError(rec, httptest.NewRequest(http.MethodGet, "/", nil), want)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected default responder status 500, got %d", rec.Code)
	}
}
