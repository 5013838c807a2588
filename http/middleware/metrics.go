package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts requests and observes their latency,
// labelled by method, route template and response status.
//
// Collectors register with reg; pass prometheus.DefaultRegisterer to expose them on /metrics.
func Metrics(reg prometheus.Registerer) Adapter {
	factory := promauto.With(reg)
	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by method, route and status code.",
	}, []string{"method", "route", "code"})
	latency := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gatekeeper",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent handling HTTP requests, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := newStatusRecorder(w)
			h.ServeHTTP(sr, r)

			route := routeTemplate(r)
			requests.WithLabelValues(r.Method, route, strconv.Itoa(sr.Status())).Inc()
			latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// routeTemplate keeps label cardinality bounded by using the matched mux route
// rather than the raw path.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}

	if tmpl, err := route.GetPathTemplate(); err == nil {
		return tmpl
	}

	return "unmatched"
}
