package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gallerybackend"

var (
	// Request metrics
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec
	RequestDurationHistogram *prometheus.HistogramVec

	// Repair metrics
	RepairRunCounter    *prometheus.CounterVec
	ReassignedRowsTotal prometheus.Counter
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics() {
	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)

	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RepairRunCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repair_runs_total",
			Help:      "Total number of repair operations run, by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ReassignedRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reassigned_rows_total",
		Help:      "Total number of artwork rows re-homed by tenant remaps",
	})
}

// Middleware tracks request counts, durations, and error responses.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		APIRequestCounter.With(prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Inc()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		RequestDurationHistogram.With(prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Observe(time.Since(start).Seconds())

		if ww.Status() >= 400 {
			APIErrorCounter.With(prometheus.Labels{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": strconv.Itoa(ww.Status()),
			}).Inc()
		}
	})
}

// Handler returns the HTTP handler for the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRepairRun increments the repair run counter
func RecordRepairRun(operation, outcome string) {
	if RepairRunCounter == nil {
		return
	}
	RepairRunCounter.With(prometheus.Labels{
		"operation": operation,
		"outcome":   outcome,
	}).Inc()
}

// RecordReassignedRows adds re-homed rows to the remap total
func RecordReassignedRows(n int64) {
	if ReassignedRowsTotal == nil || n <= 0 {
		return
	}
	ReassignedRowsTotal.Add(float64(n))
}
