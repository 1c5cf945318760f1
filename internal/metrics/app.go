package metrics

import (
	"time"

	"github.com/kamiza/kamiza/internal/observability"
)

// Application metric names
const (
	ThrottleDecisionsTotal = "throttle_decisions_total"
	ThrottleTrackedClients = "throttle_tracked_clients"

	BackendRequestsTotal   = "backend_requests_total"
	BackendRequestDuration = "backend_request_duration_ms"

	MailSendsTotal = "mail_sends_total"

	SubmissionsTotal = "submissions_total"
)

// RecordThrottleDecision counts an allow/deny decision for an endpoint and
// reports the current number of tracked clients.
func RecordThrottleDecision(endpoint string, throttled bool, tracked int) {
	if observability.TelemetrySystem == nil {
		return
	}

	decision := "allowed"
	if throttled {
		decision = "throttled"
	}

	_ = observability.TelemetrySystem.Counter(
		ThrottleDecisionsTotal,
		1,
		map[string]string{
			"endpoint": endpoint,
			"decision": decision,
		},
	)
	_ = observability.TelemetrySystem.Gauge(
		ThrottleTrackedClients,
		float64(tracked),
		map[string]string{"endpoint": endpoint},
	)
}

// RecordBackendRequest records a call to the booking API.
func RecordBackendRequest(operation string, success bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}

	_ = observability.TelemetrySystem.Counter(
		BackendRequestsTotal,
		1,
		map[string]string{
			"operation": operation,
			"status":    status,
		},
	)
	_ = observability.TelemetrySystem.Histogram(
		BackendRequestDuration,
		duration,
		map[string]string{"operation": operation},
	)
}

// RecordMailSend records an outgoing mail attempt.
func RecordMailSend(kind string, success bool) {
	if observability.TelemetrySystem == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}

	_ = observability.TelemetrySystem.Counter(
		MailSendsTotal,
		1,
		map[string]string{
			"kind":   kind,
			"status": status,
		},
	)
}

// RecordSubmission records the outcome of a registration or order submission.
// Outcome is one of accepted, invalid or failed.
func RecordSubmission(form string, outcome string) {
	if observability.TelemetrySystem == nil {
		return
	}

	_ = observability.TelemetrySystem.Counter(
		SubmissionsTotal,
		1,
		map[string]string{
			"form":    form,
			"outcome": outcome,
		},
	)
}
