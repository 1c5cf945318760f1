package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kamiza/kamiza/internal/backend"
	"github.com/kamiza/kamiza/internal/catalog"
	"github.com/kamiza/kamiza/internal/config"
	"github.com/kamiza/kamiza/internal/loans"
	"github.com/kamiza/kamiza/internal/mailer"
)

// Backend is the subset of the booking API the handlers use.
type Backend interface {
	Login(ctx context.Context, nickname, password string) (*backend.Session, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
	ReducedEvents(ctx context.Context) (json.RawMessage, error)
	Events(ctx context.Context) ([]backend.Event, error)
	BookRentals(ctx context.Context, token string) (json.RawMessage, error)
	CreateBookRental(ctx context.Context, token string, bookID json.RawMessage, reader string, at time.Time) (json.RawMessage, error)
	DeleteBookRental(ctx context.Context, token string, rentalID, bookID json.RawMessage) (json.RawMessage, error)
}

// API holds the dependencies of the /api and /dashboard handlers.
type API struct {
	Backend Backend
	// APIKey must be echoed in the api-key header of order submissions.
	APIKey  string
	Mailer  mailer.Mailer
	Mail    config.MailConfig
	Auth    config.AuthConfig
	Catalog *catalog.FileStore
	Loans   *loans.Store
	Clock   func() time.Time
}

func (a *API) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

// CookieName is the session cookie name, defaulting to auth_token.
func (a *API) CookieName() string {
	if a.Auth.CookieName != "" {
		return a.Auth.CookieName
	}
	return "auth_token"
}
