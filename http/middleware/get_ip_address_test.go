package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/middleware"
)

func TestGetIPAddress(t *testing.T) {
	tcs := []struct {
		name     string
		header   http.Header
		expected string
	}{
		{"Zero-Value", http.Header{}, "0.0.0.0"},
		{"Public", http.Header{"X-Forwarded-For": {"203.0.113.9"}}, "203.0.113.9"},
		{"Private-Skipped", http.Header{"X-Forwarded-For": {"203.0.113.9, 10.0.0.4"}}, "203.0.113.9"},
		{"Range-End", http.Header{"X-Forwarded-For": {"203.0.113.9, 10.255.255.255"}}, "203.0.113.9"},
		{"Loopback", http.Header{"X-Forwarded-For": {"127.0.0.1"}}, "0.0.0.0"},
		{"Real-Ip", http.Header{"X-Real-Ip": {"198.51.100.7"}}, "198.51.100.7"},
		{"IPv6", http.Header{"X-Forwarded-For": {"2001:db8::1"}}, "2001:db8::1"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, middleware.GetIPAddress(tc.header))
		})
	}
}

func TestInjectIPAddress(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	var actual string

	// Act
	middleware.InjectIPAddress()(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
		actual, _ = rx.Context().Value(gatekeeper.IpAddrKey).(string)
	})).ServeHTTP(w, r)

	// Assert
	require.Equal(t, "203.0.113.9", actual)
}
