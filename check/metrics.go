package check

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	credentialsCheck = "credentials"
	sessionCheck     = "session"

	outcomeError   = "error"
	outcomeInvalid = "invalid"
	outcomeValid   = "valid"
)

// Metrics counts the checks a Handler answers.
type Metrics struct {
	checks *prometheus.CounterVec
}

// NewMetrics registers Metrics with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		checks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Name:      "checks_total",
			Help:      "Admin checks answered, by check and outcome.",
		}, []string{"check", "outcome"}),
	}
}

func (m *Metrics) observe(check string, res Result) {
	if m == nil {
		return
	}

	outcome := outcomeInvalid
	switch {
	case res.Valid:
		outcome = outcomeValid
	case res.Error == MsgValidationFailed:
		outcome = outcomeError
	}

	m.checks.WithLabelValues(check, outcome).Inc()
}
