package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type supportMetrics struct {
	rosterLoads    *prometheus.CounterVec
	rosterSize     prometheus.Gauge
	submissions    *prometheus.CounterVec
	queries        *prometheus.CounterVec
	queryDurations prometheus.Observer
	suggestions    *prometheus.CounterVec
}

var (
	supportMetricsOnce sync.Once
	supportMetricsInst *supportMetrics
)

// 进程内共享一组指标，避免重复注册到默认 registry
func globalMetrics() *supportMetrics {
	supportMetricsOnce.Do(func() {
		supportMetricsInst = newSupportMetrics()
	})
	return supportMetricsInst
}

func newSupportMetrics() *supportMetrics {
	return &supportMetrics{
		rosterLoads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vdp_support",
			Subsystem: "roster",
			Name:      "loads_total",
			Help:      "Roster loads, labeled by result",
		}, []string{"result"}),
		rosterSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "vdp_support",
			Subsystem: "roster",
			Name:      "records",
			Help:      "Resident records in the currently loaded roster",
		}),
		submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vdp_support",
			Subsystem: "tickets",
			Name:      "submissions_total",
			Help:      "Ticket submissions, labeled by dispatch status",
		}, []string{"status"}),
		queries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vdp_support",
			Subsystem: "tickets",
			Name:      "queries_total",
			Help:      "Ticket list fetches from the sheet, labeled by result",
		}, []string{"result"}),
		queryDurations: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vdp_support",
			Subsystem: "tickets",
			Name:      "query_duration_seconds",
			Help:      "Duration of ticket list fetches from the sheet",
			Buckets:   prometheus.DefBuckets,
		}),
		suggestions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vdp_support",
			Subsystem: "ai",
			Name:      "suggestions_total",
			Help:      "Troubleshooting suggestion requests, labeled by result",
		}, []string{"result"}),
	}
}

func (m *supportMetrics) recordRosterLoad(result string, size int) {
	if m == nil {
		return
	}
	m.rosterLoads.WithLabelValues(result).Inc()
	if result == "success" {
		m.rosterSize.Set(float64(size))
	}
}

func (m *supportMetrics) recordSubmission(status string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(status).Inc()
}

func (m *supportMetrics) startQuery() func(result string) {
	if m == nil {
		return func(string) {}
	}
	timer := prometheus.NewTimer(m.queryDurations)
	return func(result string) {
		timer.ObserveDuration()
		m.queries.WithLabelValues(result).Inc()
	}
}

func (m *supportMetrics) recordSuggestion(result string) {
	if m == nil {
		return
	}
	m.suggestions.WithLabelValues(result).Inc()
}
