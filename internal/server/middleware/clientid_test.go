package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamiza/kamiza/internal/throttle"
)

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "first forwarded hop wins",
			headers:    map[string]string{ForwardedForHeader: " 198.51.100.4 , 10.0.0.1", RealIPHeader: "203.0.113.9"},
			remoteAddr: "10.0.0.2:5555",
			want:       "198.51.100.4",
		},
		{
			name:       "true-client-ip is ignored",
			headers:    map[string]string{"True-Client-IP": "192.0.2.77"},
			remoteAddr: "10.0.0.2:5555",
			want:       "10.0.0.2",
		},
		{
			name:       "real ip when forwarded-for is blank",
			headers:    map[string]string{ForwardedForHeader: " , 10.0.0.1", RealIPHeader: "203.0.113.9"},
			remoteAddr: "10.0.0.2:5555",
			want:       "203.0.113.9",
		},
		{
			name:       "remote addr host",
			remoteAddr: "192.0.2.10:41000",
			want:       "192.0.2.10",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.11",
			want:       "192.0.2.11",
		},
		{
			name: "unknown sentinel",
			want: throttle.UnknownClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/register", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientID(req))
		})
	}
}
