package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/kamiza/kamiza/internal/errors"
	"github.com/kamiza/kamiza/internal/forms"
	"github.com/kamiza/kamiza/internal/loans"
)

type loanRequest struct {
	Name string `json:"name"`
	Book string `json:"book"`
}

// ListLoans handles GET /api/loans.
func (a *API) ListLoans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Loans.List())
}

// CreateLoan handles POST /api/loans.
func (a *API) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := forms.Decode(r.Body, &req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "Fehler beim Ausleihen"))
		return
	}
	loan, err := a.Loans.Add(req.Name, req.Book, a.now())
	if err != nil {
		if errors.Is(err, loans.ErrMissingFields) {
			respondWithError(w, r, apperrors.NewInvalidInputError("Name und Buch erforderlich"))
			return
		}
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Fehler beim Ausleihen"))
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}
