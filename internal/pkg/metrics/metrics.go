package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the sensor ingest and notification paths
var (
	SensorReadingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sensor_readings_total",
			Help: "Total number of sensor readings ingested",
		},
	)

	TemperatureAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "temperature_alerts_total",
			Help: "Total number of temperature alerts raised, by level",
		},
		[]string{"level"},
	)

	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_status_transitions_total",
			Help: "Total number of delivery status transitions, by outcome",
		},
		[]string{"outcome"},
	)

	BroadcastsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_broadcasts_total",
			Help: "Total number of messages broadcast to live subscribers",
		},
	)

	ActiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_subscribers",
			Help: "Number of currently connected live subscribers",
		},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(
		SensorReadingsTotal,
		TemperatureAlertsTotal,
		StatusTransitionsTotal,
		BroadcastsTotal,
		ActiveSubscribers,
	)
}
