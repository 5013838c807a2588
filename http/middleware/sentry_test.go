package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/middleware"
)

func TestReportPanic(t *testing.T) {
	// Arrange + Act
	actual := middleware.ReportPanic(gatekeeper.Development)

	// Assert
	require.Equal(t, fmt.Sprintf("%p", middleware.NoopAdapter), fmt.Sprintf("%p", actual))

	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	// Act
	require.NotPanics(t, func() { middleware.ReportPanic(gatekeeper.Testing)(h).ServeHTTP(w, r) })

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
