package handlers

import (
	"net/http"

	apperrors "github.com/kamiza/kamiza/internal/errors"
)

// Products handles GET /api/products by returning the catalog file as is.
func (a *API) Products(w http.ResponseWriter, r *http.Request) {
	raw, err := a.Catalog.Load(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Produkte konnten nicht geladen werden"))
		return
	}
	writeRaw(w, http.StatusOK, raw)
}
