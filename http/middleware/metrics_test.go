package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gatekeeper/http/middleware"
)

func TestMetrics(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	router := mux.NewRouter()
	router.Handle("/validate-admin", middleware.Metrics(reg)(noopHandler())).Methods(http.MethodPost)

	// Act
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/validate-admin", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/validate-admin", nil))

	// Assert
	mfs, err := reg.Gather()
	require.Nil(t, err)

	var series int
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "gatekeeper_http_requests_total" {
			continue
		}

		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			require.Equal(t, map[string]string{"method": "POST", "route": "/validate-admin", "code": "200"}, labels)
			series++
			total += m.GetCounter().GetValue()
		}
	}

	require.Equal(t, 1, series)
	require.Equal(t, float64(2), total)
}
