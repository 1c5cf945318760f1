package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// DashboardResponse summarizes staff data for the dashboard pages.
type DashboardResponse struct {
	Section  string `json:"section"`
	Loans    int    `json:"loans"`
	Products int    `json:"products"`
}

// Dashboard serves /dashboard and its sub pages. It is mounted behind
// middleware.RequireSession.
func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	section := strings.Trim(chi.URLParam(r, "*"), "/")
	if section == "" {
		section = "overview"
	}

	resp := DashboardResponse{Section: section}
	if a.Loans != nil {
		resp.Loans = len(a.Loans.List())
	}
	if a.Catalog != nil {
		if products, err := a.Catalog.Products(r.Context()); err == nil {
			resp.Products = len(products)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
