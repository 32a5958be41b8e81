package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "slot_arena"

var (
	submissionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_submissions_total",
			Help:      "Count of registration submissions by tournament key and outcome.",
		},
		[]string{"game_type", "tournament_type", "outcome"},
	)
	decisionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_decisions_total",
			Help:      "Count of admin decisions on registrations by resulting status and outcome.",
		},
		[]string{"game_type", "tournament_type", "status", "outcome"},
	)
	approvedGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slot_approved",
			Help:      "Approved registrations per tournament slot after the last recompute.",
		},
		[]string{"game_type", "tournament_type"},
	)
	availableGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slot_available",
			Help:      "Available slots per tournament after the last recompute.",
		},
		[]string{"game_type", "tournament_type"},
	)
	reconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of a full counter reconciliation pass.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method and status code.",
		},
		[]string{"method", "code"},
	)
)

var (
	registry        = prometheus.NewRegistry()
	registerMetrics sync.Once
)

// Register all metrics.
func Register() {
	registerMetrics.Do(func() {
		registry.MustRegister(
			submissionsCounter,
			decisionsCounter,
			approvedGauge,
			availableGauge,
			reconcileDuration,
			httpRequests,
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
	})
}

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	Register()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordSubmission counts a submission attempt. outcome is "accepted" or an error class.
func RecordSubmission(gameType, tournamentType, outcome string) {
	submissionsCounter.WithLabelValues(gameType, tournamentType, outcome).Inc()
}

func RecordDecision(gameType, tournamentType, status, outcome string) {
	decisionsCounter.WithLabelValues(gameType, tournamentType, status, outcome).Inc()
}

// RecordSlotCounters mirrors the recomputed counters of one slot.
func RecordSlotCounters(gameType, tournamentType string, approved, available int) {
	approvedGauge.WithLabelValues(gameType, tournamentType).Set(float64(approved))
	availableGauge.WithLabelValues(gameType, tournamentType).Set(float64(available))
}

func RecordReconcileDuration(d time.Duration) {
	reconcileDuration.Observe(d.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the original writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// Middleware counts every request by method and response code.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.code)).Inc()
	})
}
