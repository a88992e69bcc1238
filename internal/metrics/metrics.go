package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotbook_http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slotbook_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "slotbook_http_requests_in_flight",
		Help: "Current number of HTTP requests being processed.",
	})
)

// ReservationCounter is the slice of storage needed to collect
// reservation metrics.
type ReservationCounter interface {
	CountReservationsByStatus(ctx context.Context) (map[string]int, error)
}

// reservationCollector queries storage on each scrape to report
// reservation counts broken down by status.
type reservationCollector struct {
	store            ReservationCounter
	reservationsDesc *prometheus.Desc
}

func (c *reservationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.reservationsDesc
}

func (c *reservationCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.store.CountReservationsByStatus(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.reservationsDesc, err)
		return
	}
	for status, n := range counts {
		ch <- prometheus.MustNewConstMetric(
			c.reservationsDesc,
			prometheus.GaugeValue,
			float64(n),
			status,
		)
	}
}

// Register registers all metrics with the default Prometheus registry.
// Call once at startup after storage is initialised.
func Register(store ReservationCounter) {
	prometheus.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		httpRequestsTotal,
		httpRequestDuration,
		httpRequestsInFlight,

		&reservationCollector{
			store: store,
			reservationsDesc: prometheus.NewDesc(
				"slotbook_reservations_total",
				"Number of reservations in the ledger, partitioned by status.",
				[]string{"status"},
				nil,
			),
		},
	)
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// responseWriter wraps http.ResponseWriter to capture the response status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware wraps an http.Handler to record HTTP metrics. pattern
// should be the route pattern string (e.g. "/reservations/{id}/cancel")
// so the path label has bounded cardinality.
func Middleware(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			httpRequestsInFlight.Dec()
			status := strconv.Itoa(rw.status)
			httpRequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(rw, r)
	})
}
