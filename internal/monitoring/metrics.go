package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueWaiting = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "servicequeue_waiting_total",
			Help: "Current number of waiting entries per service",
		},
		[]string{"service_id"},
	)

	queueInService = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "servicequeue_in_service_total",
			Help: "Current number of in-service entries per service",
		},
		[]string{"service_id"},
	)

	queueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicequeue_operations_total",
			Help: "Total queue operations",
		},
		[]string{"operation", "outcome"},
	)

	estimatedWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "servicequeue_estimated_wait_minutes",
			Help:    "Estimated wait assigned to entries on join",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		},
		[]string{"service_id"},
	)

	eventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servicequeue_events_emitted_total",
			Help: "Events delivered to subscribers per registry",
		},
		[]string{"registry"},
	)
)

func TrackOperation(operation, outcome string) {
	queueOperations.WithLabelValues(operation, outcome).Inc()
}

func SetQueueDepth(serviceID string, waiting, inService int) {
	queueWaiting.WithLabelValues(serviceID).Set(float64(waiting))
	queueInService.WithLabelValues(serviceID).Set(float64(inService))
}

func ObserveEstimatedWait(serviceID string, minutes int) {
	estimatedWait.WithLabelValues(serviceID).Observe(float64(minutes))
}

func TrackEventEmitted(registry string) {
	eventsEmitted.WithLabelValues(registry).Inc()
}
