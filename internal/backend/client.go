package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kamiza/kamiza/internal/config"
	"github.com/kamiza/kamiza/internal/metrics"
)

// APIKeyHeader carries the shared key on every backend request.
const APIKeyHeader = "api-key"

var (
	// ErrNotConfigured is returned when no base URL is set.
	ErrNotConfigured = errors.New("backend is not configured")
	// ErrInvalidCredentials is returned by Login on a non-2xx answer.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("backend unavailable")
)

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Client talks to the booking API.
type Client struct {
	BaseURL         string
	APIKey          string
	ServiceNickname string
	ServicePassword string
	HTTPClient      *http.Client
	Breaker         CircuitBreaker
	Clock           func() time.Time
	// Location is attached to decoded events. Nil means DefaultTimezone.
	Location *time.Location
}

// NewFromConfig builds a client with a circuit breaker sized from cfg. An
// unknown timezone falls back to DefaultTimezone; config validation rejects it
// earlier.
func NewFromConfig(cfg config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	loc, err := LoadLocation(cfg.Timezone)
	if err != nil {
		loc = nil
	}
	return &Client{
		Location:        loc,
		BaseURL:         strings.TrimSpace(cfg.BaseURL),
		APIKey:          cfg.APIKey,
		ServiceNickname: cfg.ServiceNickname,
		ServicePassword: cfg.ServicePassword,
		HTTPClient:      &http.Client{Timeout: timeout},
		Breaker:         NewCircuitBreaker("backend", cfg.BreakerTimeout, cfg.BreakerMaxFailures),
	}
}

// Configured reports whether a base URL is present.
func (c *Client) Configured() bool {
	return c != nil && strings.TrimSpace(c.BaseURL) != ""
}

// Login exchanges nickname and password for a session.
func (c *Client) Login(ctx context.Context, nickname, password string) (*Session, error) {
	var session Session
	body := map[string]string{"nickname": nickname, "password": password}
	if err := c.do(ctx, "login", http.MethodPost, "login", "", body, &session); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}
	return &session, nil
}

// ValidateToken asks the backend whether a session token is still valid.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, "validate_token", http.MethodPost, "utils/validatetoken", "", map[string]string{"token": token}, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// ReducedEvents returns the public event list unchanged.
func (c *Client) ReducedEvents(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, "reduced_events", http.MethodGet, "event/reduced", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Events logs in with the service account and returns the full event list.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	session, err := c.Login(ctx, c.ServiceNickname, c.ServicePassword)
	if err != nil {
		return nil, fmt.Errorf("service login: %w", err)
	}
	var events []Event
	if err := c.do(ctx, "events", http.MethodGet, "event", session.AccessToken, nil, &events); err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Location = c.Location
	}
	return events, nil
}

// BookRentals lists current book rentals.
func (c *Client) BookRentals(ctx context.Context, token string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, "book_rentals", http.MethodGet, "bookrental", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBookRental lends bookID to reader, stamped with at.
func (c *Client) CreateBookRental(ctx context.Context, token string, bookID json.RawMessage, reader string, at time.Time) (json.RawMessage, error) {
	body := RentalRequest{
		BookID:     bookID,
		ReaderName: reader,
		RentalDate: at.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	var out json.RawMessage
	if err := c.do(ctx, "create_book_rental", http.MethodPost, "bookrental", token, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBookRental ends a rental.
func (c *Client) DeleteBookRental(ctx context.Context, token string, rentalID, bookID json.RawMessage) (json.RawMessage, error) {
	body := RentalReturn{RentalID: rentalID, BookID: bookID}
	var out json.RawMessage
	if err := c.do(ctx, "delete_book_rental", http.MethodDelete, "bookrental", token, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, body, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", operation, err)
		}
		payload = encoded
	}

	reqURL := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	start := c.now()

	run := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(APIKeyHeader, c.APIKey)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.client().Do(req)
		if err != nil {
			return fmt.Errorf("%s: %w", operation, err)
		}
		defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return fmt.Errorf("%s: read response: %w", operation, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{Operation: operation, StatusCode: resp.StatusCode, Body: snippet(data)}
		}
		if out == nil {
			return nil
		}
		if len(bytes.TrimSpace(data)) == 0 {
			data = []byte("null")
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
		return nil
	}

	var err error
	if c.Breaker != nil {
		err = c.Breaker.Execute(run)
	} else {
		err = run()
	}
	metrics.RecordBackendRequest(operation, err == nil || isClientError(err), c.now().Sub(start))
	return err
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func snippet(data []byte) string {
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		return text[:200]
	}
	return text
}
