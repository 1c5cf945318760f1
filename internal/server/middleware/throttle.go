package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/metrics"
	"github.com/kamiza/kamiza/internal/observability"
)

// DefaultThrottleMessage is returned with every 429 response.
const DefaultThrottleMessage = "Zu viele Anfragen. Bitte versuche es in einer Minute erneut."

// Limiter decides whether a client has exhausted its budget.
type Limiter interface {
	ShouldThrottle(clientID string, now time.Time) bool
	Len() int
}

// ThrottledResponder writes the rejection for clientID.
type ThrottledResponder func(w http.ResponseWriter, r *http.Request, clientID, message string)

// ThrottleOptions configures the Throttle middleware.
type ThrottleOptions struct {
	Limiter  Limiter
	Endpoint string
	Message  string
	KeyFn    KeyFunc
	Clock    func() time.Time
	// Respond renders rejections. Nil logs and writes the error body here.
	Respond ThrottledResponder
}

// Throttle rejects requests with 429 once the limiter reports the client over
// budget. The decision is taken before the body is read.
func Throttle(opts ThrottleOptions) func(next http.Handler) http.Handler {
	if opts.Message == "" {
		opts.Message = DefaultThrottleMessage
	}
	if opts.KeyFn == nil {
		opts.KeyFn = ClientID
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Respond == nil {
		opts.Respond = writeThrottled(opts.Endpoint)
	}

	return func(next http.Handler) http.Handler {
		if opts.Limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			throttled := opts.Limiter.ShouldThrottle(key, opts.Clock())
			metrics.RecordThrottleDecision(opts.Endpoint, throttled, opts.Limiter.Len())

			if throttled {
				opts.Respond(w, r, key, opts.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeThrottled(endpoint string) ThrottledResponder {
	return func(w http.ResponseWriter, r *http.Request, clientID, message string) {
		if observability.ServerLogger != nil {
			observability.ServerLogger.Info("Request throttled",
				zap.String("endpoint", endpoint),
				zap.String("client_id", clientID),
				zap.String("requestID", GetRequestID(r.Context())))
		}
		writeErrorResponse(w, "TOO_MANY_REQUESTS", message, GetRequestID(r.Context()), http.StatusTooManyRequests)
	}
}
