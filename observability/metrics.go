package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"raffler/domain/events"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "raffler"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	entriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "entries_total",
			Help:      "Total number of accepted raffle entries.",
		},
	)

	entryAmountTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "entry_amount_total",
			Help:      "Total value paid into raffle rounds.",
		},
	)

	upkeepsPerformed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "upkeeps_performed_total",
			Help:      "Total number of randomness requests issued by upkeep.",
		},
	)

	settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "settlements_total",
			Help:      "Total number of winner payouts by outcome.",
		},
		[]string{"outcome"},
	)

	rejectedFulfillments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "fulfillments_rejected_total",
			Help:      "Total number of randomness fulfillments the coordinator rejected.",
		},
		[]string{"reason"},
	)

	payoutAmount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "payout_amount",
			Help:      "Distribution of winner payouts.",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 10),
		},
	)

	potBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "pot_balance",
			Help:      "Current balance of the open round.",
		},
	)

	participants = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "participants",
			Help:      "Current number of entries in the round.",
		},
	)

	calculating = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "raffle",
			Name:      "calculating",
			Help:      "1 while the round waits for randomness or settlement, 0 while open.",
		},
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		entriesTotal,
		entryAmountTotal,
		upkeepsPerformed,
		settlements,
		rejectedFulfillments,
		payoutAmount,
		potBalance,
		participants,
		calculating,
		httpInFlight,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// EventTypes lists the domain events HandleEvent consumes
func EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeParticipantEntered,
		events.EventTypeRoundCalculating,
		events.EventTypeWinnerPicked,
		events.EventTypeSettlementFailed,
	}
}

// HandleEvent updates raffle metrics from a domain event. It runs inside the
// coordinator's critical section, so it only touches collectors.
func HandleEvent(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ParticipantEnteredEvent:
		entriesTotal.Inc()
		entryAmountTotal.Add(float64(e.AmountPaid))
		potBalance.Set(float64(e.RoundBalance))
		participants.Set(float64(e.Participants))
	case events.RoundCalculatingEvent:
		upkeepsPerformed.Inc()
		calculating.Set(1)
	case events.WinnerPickedEvent:
		settlements.WithLabelValues("success").Inc()
		payoutAmount.Observe(float64(e.Payout))
		potBalance.Set(0)
		participants.Set(0)
		calculating.Set(0)
	case events.SettlementFailedEvent:
		settlements.WithLabelValues("failure").Inc()
	}
	return nil
}

// RecordRejectedFulfillment counts a fulfillment the coordinator refused
func RecordRejectedFulfillment(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	rejectedFulfillments.WithLabelValues(reason).Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Paths are labelled with the matched chi route pattern.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := routePattern(r)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routePattern keeps label cardinality bounded: unmatched paths share one label
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
