package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// expiration sweep. A nil receiver is safe everywhere so callers never need
// to guard their observations.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	sweepRuns       *prometheus.CounterVec
	sweepDuration   prometheus.Histogram
	sweepEmails     prometheus.Counter
	sweepErrors     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	sweepRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_runs_total",
		Help: "Total expiration sweep runs by outcome",
	}, []string{"outcome"})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sweep_duration_seconds",
		Help:    "Wall clock duration of expiration sweep runs",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	sweepEmails := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_emails_sent_total",
		Help: "Total expiration notice emails sent",
	})

	sweepErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_user_errors_total",
		Help: "Total per-user failures during expiration sweeps",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, sweepRuns, sweepDuration, sweepEmails, sweepErrors, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		sweepRuns:       sweepRuns,
		sweepDuration:   sweepDuration,
		sweepEmails:     sweepEmails,
		sweepErrors:     sweepErrors,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup outcome.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveSweepRun records the outcome of one expiration sweep.
func (m *MetricsService) ObserveSweepRun(success bool, duration time.Duration, emailsSent, errorCount int) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.sweepRuns.WithLabelValues(outcome).Inc()
	m.sweepDuration.Observe(duration.Seconds())
	m.sweepEmails.Add(float64(emailsSent))
	m.sweepErrors.Add(float64(errorCount))
}
