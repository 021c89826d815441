package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "prooptica"

// CalendarMetrics exposes counters/histograms for the calendar proxy. It
// satisfies both portal.Observer and calendar.Recorder.
type CalendarMetrics struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	missesTotal     *prometheus.CounterVec
	responsesTotal  *prometheus.CounterVec
}

func NewCalendarMetrics(reg prometheus.Registerer) *CalendarMetrics {
	m := &CalendarMetrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "upstream_requests_total",
			Help:      "Total requests sent to the booking portal",
		}, []string{"phase", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of booking portal requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		missesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "extraction_misses_total",
			Help:      "Calendar page fields the extractor could not find",
		}, []string{"field"}),
		responsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "responses_total",
			Help:      "Calendar endpoint responses by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.missesTotal, m.responsesTotal)
	return m
}

func (m *CalendarMetrics) ObserveUpstream(phase, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(phase, outcome).Inc()
	m.upstreamLatency.WithLabelValues(phase).Observe(elapsed.Seconds())
}

func (m *CalendarMetrics) RecordExtractionMiss(field string) {
	if m == nil {
		return
	}
	m.missesTotal.WithLabelValues(field).Inc()
}

func (m *CalendarMetrics) RecordResponse(outcome string) {
	if m == nil {
		return
	}
	m.responsesTotal.WithLabelValues(outcome).Inc()
}
