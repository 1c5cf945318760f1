package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamiza/kamiza/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Client{
		BaseURL:         server.URL + "/",
		APIKey:          "secret-key",
		ServiceNickname: "service",
		ServicePassword: "pw",
		HTTPClient:      server.Client(),
	}
}

func TestLoginSendsHeadersAndReturnsToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret-key", r.Header.Get(APIKeyHeader))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sensei", body["nickname"])
		assert.Equal(t, "hunter2", body["password"])

		_, _ = w.Write([]byte(`{"accessToken":"tok-1"}`))
	})

	session, err := client.Login(context.Background(), "sensei", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.AccessToken)
}

func TestLoginRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Login(context.Background(), "sensei", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/utils/validatetoken", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"valid":` + map[bool]string{true: "true", false: "false"}[body["token"] == "good"] + `}`))
	})

	valid, err := client.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = client.ValidateToken(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestEventsLogsInWithServiceAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "service", body["nickname"])
			_, _ = w.Write([]byte(`{"accessToken":"svc"}`))
		case "/event":
			assert.Equal(t, "Bearer svc", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[{"id":3,"eventyear":"2026","description":"Sommerlager","eventdate":"2026-07-10","deadline":"2026-06-30","options":[{"id":1,"description":"Übernachtung","slug":"overnight","type":"checkbox"}]}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	events, err := client.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].ID)
	assert.Equal(t, "Sommerlager", events[0].Description)
	require.Len(t, events[0].Options, 1)
	assert.Equal(t, "overnight", events[0].Options[0].Slug)
}

func TestReducedEventsPassesThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event/reduced", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"description":"Kata"}]`))
	})

	raw, err := client.ReducedEvents(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"description":"Kata"}]`, string(raw))
}

func TestBookRentalRequests(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookrental", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		seen = append(seen, r.Method)

		body, _ := io.ReadAll(r.Body)
		switch r.Method {
		case http.MethodPost:
			assert.JSONEq(t, `{"bookid":7,"readername":"Kenji","rentaldate":"2026-10-16T09:30:00.000Z"}`, string(body))
		case http.MethodDelete:
			assert.JSONEq(t, `{"rentalid":2,"bookid":7}`, string(body))
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	ctx := context.Background()
	_, err := client.BookRentals(ctx, "user-token")
	require.NoError(t, err)

	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	_, err = client.CreateBookRental(ctx, "user-token", json.RawMessage(`7`), "Kenji", at)
	require.NoError(t, err)

	_, err = client.DeleteBookRental(ctx, "user-token", json.RawMessage(`2`), json.RawMessage(`7`))
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodGet, http.MethodPost, http.MethodDelete}, seen)
}

func TestStatusErrorOnServerFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := client.ReducedEvents(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Body)
}

func TestNotConfigured(t *testing.T) {
	client := &Client{}
	_, err := client.ReducedEvents(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, client.Configured())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	client.Breaker = NewCircuitBreaker("test", time.Minute, 2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.ReducedEvents(ctx)
		require.Error(t, err)
	}
	_, err := client.ReducedEvents(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	client.Breaker = NewCircuitBreaker("test", time.Minute, 1)

	for i := 0; i < 3; i++ {
		_, err := client.Login(context.Background(), "a", "b")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestNewFromConfig(t *testing.T) {
	client := NewFromConfig(config.BackendConfig{
		BaseURL:            " https://api.example.org ",
		APIKey:             "k",
		Timeout:            3 * time.Second,
		BreakerTimeout:     time.Second,
		BreakerMaxFailures: 5,
	})
	assert.Equal(t, "https://api.example.org", client.BaseURL)
	assert.Equal(t, 3*time.Second, client.HTTPClient.Timeout)
	assert.NotNil(t, client.Breaker)
	assert.True(t, client.Configured())
}
