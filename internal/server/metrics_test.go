package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry/exporters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamiza/kamiza/internal/observability"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// withExporter installs a placeholder exporter and routes proxy requests to rt.
func withExporter(t *testing.T, rt roundTripFunc) {
	t.Helper()
	client, exporter := metricsProxyClient, observability.PrometheusExporter
	t.Cleanup(func() {
		metricsProxyClient = client
		observability.PrometheusExporter = exporter
	})
	metricsProxyClient = &http.Client{Transport: rt}
	observability.PrometheusExporter = exporters.NewPrometheusExporter("kamiza_test", ":9090")
}

func TestMetricsHandlerProxiesExporter(t *testing.T) {
	withExporter(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/metrics", req.URL.Path)
		assert.Equal(t, "127.0.0.1", req.URL.Hostname())
		header := make(http.Header)
		header.Set("Connection", "close")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     header,
			Body:       io.NopCloser(strings.NewReader("throttle_decisions_total{decision=\"allowed\"} 3\n")),
		}, nil
	})

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Empty(t, rec.Header().Get("Connection"))
	assert.Contains(t, rec.Body.String(), "throttle_decisions_total")
}

func TestMetricsHandlerErrors(t *testing.T) {
	t.Run("no exporter", func(t *testing.T) {
		original := observability.PrometheusExporter
		observability.PrometheusExporter = nil
		t.Cleanup(func() { observability.PrometheusExporter = original })

		rec := httptest.NewRecorder()
		MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, rec).Code)
	})

	t.Run("exporter unreachable", func(t *testing.T) {
		withExporter(t, func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		rec := httptest.NewRecorder()
		MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "EXTERNAL_SERVICE_ERROR", decodeError(t, rec).Code)
	})
}
