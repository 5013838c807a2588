package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/middleware"
)

func TestRequestID(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	var actual string

	// Act
	middleware.RequestID()(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
		actual, _ = rx.Context().Value(gatekeeper.RequestIDKey).(string)
	})).ServeHTTP(w, r)

	// Assert
	_, err := uuid.Parse(actual)
	require.Nil(t, err)
	require.Equal(t, actual, w.Header().Get("X-Request-Id"))

	// Arrange
	w = httptest.NewRecorder()
	incoming := uuid.NewString()
	r.Header.Set("X-Request-Id", incoming)

	// Act
	middleware.RequestID()(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
		actual, _ = rx.Context().Value(gatekeeper.RequestIDKey).(string)
	})).ServeHTTP(w, r)

	// Assert
	require.Equal(t, incoming, actual)

	// Arrange
	w = httptest.NewRecorder()
	r.Header.Set("X-Request-Id", "not-a-uuid")

	// Act
	middleware.RequestID()(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
		actual, _ = rx.Context().Value(gatekeeper.RequestIDKey).(string)
	})).ServeHTTP(w, r)

	// Assert
	require.NotEqual(t, "not-a-uuid", actual)
}
