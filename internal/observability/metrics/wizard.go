package metrics

import "github.com/prometheus/client_golang/prometheus"

// WizardMetrics counts booking wizard transitions.
type WizardMetrics struct {
	transitionsTotal *prometheus.CounterVec
	repairsTotal     prometheus.Counter
}

func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	m := &WizardMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wizard",
			Name:      "transitions_total",
			Help:      "Wizard actions by type and outcome",
		}, []string{"action", "outcome"}),
		repairsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wizard",
			Name:      "repairs_total",
			Help:      "Stored selections cut back after catalog changes",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.repairsTotal)
	return m
}

func (m *WizardMetrics) RecordTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *WizardMetrics) RecordRepair() {
	if m == nil {
		return
	}
	m.repairsTotal.Inc()
}
