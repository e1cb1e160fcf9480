package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	callsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calls_created_total",
			Help: "Количество созданных звонков",
		},
		[]string{"type"},
	)

	callsEndedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calls_ended_total",
			Help: "Количество звонков, завершённых создателем",
		},
		[]string{"type"},
	)

	liveParticipants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "call_live_participants",
			Help: "Количество участников в активных сессиях",
		},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func CallCreated(callType string) {
	callsCreatedTotal.WithLabelValues(callType).Inc()
}

func CallEnded(callType string) {
	callsEndedTotal.WithLabelValues(callType).Inc()
}

func SetLiveParticipants(count int) {
	liveParticipants.Set(float64(count))
}
