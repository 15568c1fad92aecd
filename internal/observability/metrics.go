package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RideRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropme",
		Name:      "ride_requests_total",
		Help:      "Ride requests created, by derived ride type.",
	}, []string{"ride_type"})

	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropme",
		Name:      "bookings_total",
		Help:      "Booking state transitions, by resulting status.",
	}, []string{"status"})

	ReassignmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dropme",
		Name:      "reassignments_total",
		Help:      "Driver reassignments requested by passengers.",
	})

	QueueExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dropme",
		Name:      "queue_exhausted_total",
		Help:      "Ride requests that ran out of candidate drivers.",
	})

	PinVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropme",
		Name:      "pin_verifications_total",
		Help:      "Ride pin verification attempts, by outcome.",
	}, []string{"outcome"})

	QuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dropme",
		Name:      "quote_duration_seconds",
		Help:      "Time spent computing fare quotes.",
		Buckets:   prometheus.DefBuckets,
	})
)
