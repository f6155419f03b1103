package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	decisions           *prometheus.CounterVec
	reportsSubmitted    *prometheus.CounterVec
	actions             *prometheus.CounterVec
	enforcementFailures *prometheus.CounterVec
	analysisDuration    prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustengine_moderation_decisions_total",
			Help: "Moderation decisions by outcome.",
		}, []string{"decision"}),
		reportsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustengine_reports_submitted_total",
			Help: "User reports submitted by final priority.",
		}, []string{"priority"}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustengine_actions_total",
			Help: "Moderation actions recorded by type.",
		}, []string{"type"}),
		enforcementFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustengine_enforcement_failures_total",
			Help: "Failed enforcement dispatches by command kind.",
		}, []string{"type"}),
		analysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustengine_analysis_duration_seconds",
			Help:    "Time spent analyzing content.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveDecision(decision string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveReport(priority string) {
	if m == nil {
		return
	}
	m.reportsSubmitted.WithLabelValues(priority).Inc()
}

func (m *Metrics) ObserveAction(actionType string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(actionType).Inc()
}

func (m *Metrics) ObserveEnforcementFailure(kind string) {
	if m == nil {
		return
	}
	m.enforcementFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.analysisDuration.Observe(d.Seconds())
}
