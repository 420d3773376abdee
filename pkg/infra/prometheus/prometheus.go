package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	SessionsStartedTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "telesession_sessions_started_total",
			Help: "Total number of sessions started",
		},
	)

	SessionsStoppedTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "telesession_sessions_stopped_total",
			Help: "Total number of sessions stopped",
		},
	)

	SessionStartFailuresTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "telesession_session_start_failures_total",
			Help: "Start commands aborted, by failing step",
		},
		[]string{"step"},
	)

	NotificationsPublishedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "telesession_notifications_published_total",
			Help: "Outbound notifications published, by kind",
		},
		[]string{"kind"},
	)

	ActiveSessions = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "telesession_active_sessions",
			Help: "Sessions currently held in the in-memory table",
		},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
