package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transitions_total",
		Help: "Applied application state-machine operations",
	}, []string{"op"})
	ConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conflicts_total",
		Help: "Operations that lost a claim or booking race",
	}, []string{"op"})
	SlotBookingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slot_bookings_total",
		Help: "Successful interview slot bookings",
	})
	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Notifications that could not be delivered",
	})
	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_total",
		Help: "Total number of 429 responses",
	})
	IdempotencyHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idempotency_hits_total",
		Help: "Total idempotency cache hits",
	})
	DedupeHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dedupe_hits_total",
		Help: "Duplicate submissions answered from cache",
	})
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 200, 300, 500, 1000},
	}, []string{"route"})
)

// Register mounts /metrics.
func Register(r chi.Router) {
	r.Handle("/metrics", promhttp.Handler())
}

// Duration observes request latency labelled by the matched route pattern,
// so ids in paths do not blow up cardinality.
func Duration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		RequestDuration.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}
