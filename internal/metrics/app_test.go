package metrics

import (
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamiza/kamiza/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: collector,
	})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })

	return collector
}

func TestRecordThrottleDecision(t *testing.T) {
	collector := setupTelemetry(t)

	RecordThrottleDecision("register", false, 3)
	RecordThrottleDecision("register", true, 3)

	assert.GreaterOrEqual(t, collector.CountMetricsByName(ThrottleDecisionsTotal), 2)
	assert.Greater(t, collector.CountMetricsByName(ThrottleTrackedClients), 0)
}

func TestRecordBackendAndMail(t *testing.T) {
	collector := setupTelemetry(t)

	RecordBackendRequest("events", true, 15*time.Millisecond)
	RecordMailSend("order", false)
	RecordSubmission("order", "accepted")

	assert.Greater(t, collector.CountMetricsByName(BackendRequestsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(BackendRequestDuration), 0)
	assert.Greater(t, collector.CountMetricsByName(MailSendsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(SubmissionsTotal), 0)
}

func TestRecordersAreNoopsWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	RecordThrottleDecision("order", true, 1)
	RecordBackendRequest("login", false, time.Second)
	RecordMailSend("registration", true)
	RecordSubmission("registration", "invalid")
	RecordError("INTERNAL_ERROR", 500)
	RecordPanic()
	RecordErrorByEndpoint("/api/order", "INTERNAL_ERROR")
}
