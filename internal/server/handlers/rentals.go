package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kamiza/kamiza/internal/errors"
	"github.com/kamiza/kamiza/internal/forms"
)

type rentalCreateRequest struct {
	Book json.RawMessage `json:"book"`
	Name string          `json:"name"`
}

type rentalReturnRequest struct {
	RentalID json.RawMessage `json:"rentalid"`
	BookID   json.RawMessage `json:"bookid"`
}

// BookRentals handles GET /api/rental/books.
func (a *API) BookRentals(w http.ResponseWriter, r *http.Request) {
	token, ok := a.requireToken(w, r)
	if !ok {
		return
	}
	raw, err := a.Backend.BookRentals(r.Context(), token)
	if err != nil {
		respondWithBackendError(w, r, err, "[GET all book rentals]: Something went wrong")
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

// CreateBookRental handles POST /api/rental/books.
func (a *API) CreateBookRental(w http.ResponseWriter, r *http.Request) {
	token, ok := a.requireToken(w, r)
	if !ok {
		return
	}
	var req rentalCreateRequest
	if err := forms.Decode(r.Body, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid rental request"))
		return
	}
	raw, err := a.Backend.CreateBookRental(r.Context(), token, req.Book, req.Name, a.now())
	if err != nil {
		respondWithBackendError(w, r, err, "[POST book rentals]: Something went wrong")
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

// DeleteBookRental handles DELETE /api/rental/books.
func (a *API) DeleteBookRental(w http.ResponseWriter, r *http.Request) {
	token, ok := a.requireToken(w, r)
	if !ok {
		return
	}
	var req rentalReturnRequest
	if err := forms.Decode(r.Body, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid rental request"))
		return
	}
	raw, err := a.Backend.DeleteBookRental(r.Context(), token, req.RentalID, req.BookID)
	if err != nil {
		respondWithBackendError(w, r, err, "[DELETE book rentals]: Something went wrong")
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (a *API) requireToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := a.sessionToken(r)
	if token == "" {
		respondWithError(w, r, apperrors.NewUnauthorizedError("not logged in"))
		return "", false
	}
	return token, true
}
