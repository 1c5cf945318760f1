package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/kamiza/kamiza/internal/throttle"
)

// Headers consulted, in order, when identifying a client.
const (
	ForwardedForHeader = "X-Forwarded-For"
	RealIPHeader       = "X-Real-IP"
)

// KeyFunc derives the throttle bucket for a request.
type KeyFunc func(r *http.Request) string

// ClientID returns the first X-Forwarded-For hop, then X-Real-IP, then the host
// part of RemoteAddr. Requests carrying none of these share the
// throttle.UnknownClient bucket.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get(ForwardedForHeader); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get(RealIPHeader)); ip != "" {
		return ip
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	if remote != "" {
		return remote
	}

	return throttle.UnknownClient
}
