// Package metrics exports refresh results as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/j-veylop/erwait-dashboard-tui/internal/logger"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
)

// Refresh results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultStale   = "stale"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	bucketCases   *prometheus.GaugeVec
	categoryHours *prometheus.GaugeVec
	categoryCases *prometheus.GaugeVec
	degraded      prometheus.Gauge
	refreshes     *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec

	server *http.Server
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bucketCases: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "erwait_bucket_cases",
			Help: "Cases per wait-duration bucket in the last snapshot.",
		}, []string{"bucket"}),
		categoryHours: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "erwait_category_avg_hours",
			Help: "Average wait in hours per severity category in the last snapshot.",
		}, []string{"category"}),
		categoryCases: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "erwait_category_cases",
			Help: "Cases per severity category in the last snapshot.",
		}, []string{"category"}),
		degraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "erwait_degraded_values",
			Help: "Upstream wait durations read as zero in the last snapshot.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erwait_refresh_total",
			Help: "Refresh cycles by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "erwait_fetch_duration_seconds",
			Help:    "Upstream fetch latency.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"endpoint"}),
	}

	m.registry.MustRegister(
		m.bucketCases,
		m.categoryHours,
		m.categoryCases,
		m.degraded,
		m.refreshes,
		m.fetchDuration,
	)
	return m
}

// ObserveSnapshot replaces the snapshot gauges with s.
func (m *Metrics) ObserveSnapshot(s *models.Snapshot) {
	if s == nil {
		return
	}

	m.bucketCases.Reset()
	for i, label := range s.Permanence.Labels {
		m.bucketCases.WithLabelValues(label).Set(s.Permanence.Values[i])
	}

	m.categoryHours.Reset()
	m.categoryCases.Reset()
	for _, a := range s.Averages {
		m.categoryHours.WithLabelValues(a.Name).Set(a.Hours)
		m.categoryCases.WithLabelValues(a.Name).Set(float64(a.Count))
	}

	m.degraded.Set(float64(s.Degraded))
}

// ObserveRefresh counts one finished refresh cycle.
func (m *Metrics) ObserveRefresh(result string) {
	m.refreshes.WithLabelValues(result).Inc()
}

// ObserveFetch records how long an endpoint fetch took.
func (m *Metrics) ObserveFetch(endpoint string, d time.Duration) {
	m.fetchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Handler serves the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts the /metrics endpoint on addr in the background.
func (m *Metrics) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	m.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", "addr", addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server exited", "error", err)
		}
	}()
}

// Shutdown stops the metrics server if it was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
