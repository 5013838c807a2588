package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts where agents end up at the gate.
type Metrics struct {
	renders     *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

// NewMetrics registers Metrics with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Subsystem: "gate",
			Name:      "renders_total",
			Help:      "Gated requests, by the state the gate rendered.",
		}, []string{"state"}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Subsystem: "gate",
			Name:      "submissions_total",
			Help:      "Login form submissions, by mode and outcome.",
		}, []string{"mode", "outcome"}),
	}
}

func (m *Metrics) rendered(s State) {
	m.renders.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) submitted(mode string, granted bool) {
	outcome := "denied"
	if granted {
		outcome = "granted"
	}

	m.submissions.WithLabelValues(mode, outcome).Inc()
}
