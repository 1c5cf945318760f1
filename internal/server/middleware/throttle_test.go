package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamiza/kamiza/internal/throttle"
)

func newThrottledHandler(t *testing.T, limiter *throttle.Throttle, now time.Time) http.Handler {
	t.Helper()
	mw := Throttle(ThrottleOptions{
		Limiter:  limiter,
		Endpoint: "register",
		Clock:    func() time.Time { return now },
	})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func postFrom(handler http.Handler, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/register", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestThrottleRejectsAfterBudget(t *testing.T) {
	limiter := throttle.New(throttle.Config{Window: time.Minute, MaxRequests: 2})
	handler := newThrottledHandler(t, limiter, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		rec := postFrom(handler, "192.0.2.1:1234", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := postFrom(handler, "192.0.2.1:1234", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Error.Code)
	assert.Equal(t, DefaultThrottleMessage, body.Error.Message)

	// a different client is unaffected
	rec = postFrom(handler, "192.0.2.2:1234", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestThrottleAddresslessRequestsShareBucket(t *testing.T) {
	limiter := throttle.New(throttle.Config{Window: time.Minute, MaxRequests: 1})
	handler := newThrottledHandler(t, limiter, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	require.Equal(t, http.StatusOK, postFrom(handler, "", nil).Code)
	require.Equal(t, http.StatusOK, postFrom(handler, "", nil).Code)
	require.Equal(t, http.StatusTooManyRequests, postFrom(handler, "", nil).Code)

	entry, ok := limiter.Lookup(throttle.UnknownClient)
	require.True(t, ok)
	assert.Equal(t, 2, entry.Count)
}

func TestThrottleUsesForwardedFor(t *testing.T) {
	limiter := throttle.New(throttle.Config{Window: time.Minute, MaxRequests: 1})
	handler := newThrottledHandler(t, limiter, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	headers := map[string]string{ForwardedForHeader: "198.51.100.7"}
	postFrom(handler, "10.0.0.1:80", headers)
	postFrom(handler, "10.0.0.2:80", headers)
	rec := postFrom(handler, "10.0.0.3:80", headers)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	_, ok := limiter.Lookup("10.0.0.1")
	assert.False(t, ok)
}

func TestThrottleWithoutLimiterPassesThrough(t *testing.T) {
	handler := Throttle(ThrottleOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestThrottleUsesCustomResponder(t *testing.T) {
	limiter := throttle.New(throttle.Config{Window: time.Minute, MaxRequests: 1})
	var gotClient, gotMessage string
	mw := Throttle(ThrottleOptions{
		Limiter: limiter,
		Message: "langsam",
		Respond: func(w http.ResponseWriter, r *http.Request, clientID, message string) {
			gotClient, gotMessage = clientID, message
			w.WriteHeader(http.StatusTeapot)
		},
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, postFrom(handler, "192.0.2.9:1234", nil).Code)
	}
	rec := postFrom(handler, "192.0.2.9:1234", nil)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "192.0.2.9", gotClient)
	assert.Equal(t, "langsam", gotMessage)
}
