package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "servicehub"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	slotRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_slot_rejections_total",
			Help:      "Booking attempts rejected because the slot was taken, by reason.",
		},
		[]string{"reason"},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_transitions_total",
			Help:      "Applied booking status transitions.",
		},
		[]string{"from", "to"},
	)

	messagesAppended = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_messages_total",
			Help:      "Messages appended to booking threads.",
		},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_published_total",
			Help:      "Kafka publish attempts by topic and outcome.",
		},
		[]string{"topic", "outcome"},
	)

	eventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_consumed_total",
			Help:      "Kafka messages handled by topic and outcome.",
		},
		[]string{"topic", "outcome"},
	)

	kafkaLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_operation_duration_seconds",
			Help:      "Kafka publish and handle latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "topic"},
	)
)

// Register registers all collectors with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			bookingsCreated,
			slotRejections,
			statusTransitions,
			messagesAppended,
			eventsPublished,
			eventsConsumed,
			kafkaLatency,
		)
	})
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncSlotRejected(reason string) {
	slotRejections.WithLabelValues(reason).Inc()
}

func IncStatusTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

func IncMessageAppended() {
	messagesAppended.Inc()
}

func IncPublished(topic, outcome string) {
	eventsPublished.WithLabelValues(topic, outcome).Inc()
}

func IncConsumed(topic, outcome string) {
	eventsConsumed.WithLabelValues(topic, outcome).Inc()
}

func ObserveKafka(operation, topic string, seconds float64) {
	kafkaLatency.WithLabelValues(operation, topic).Observe(seconds)
}
