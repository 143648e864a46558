package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Длительность HTTP-запросов (секунды)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Переходы состояний проектов и предложений
	EngagementTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_transitions_total",
			Help: "Total number of project and proposal status transitions",
		},
		[]string{"entity", "status"}, // entity: project, proposal
	)

	// Проигранные гонки при принятии предложения
	AcceptConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proposal_accept_conflicts_total",
			Help: "Total number of accept attempts rejected because another proposal won",
		},
	)

	// Принятия, начатые при занятой блокировке проекта
	AcceptLockBusy = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proposal_accept_lock_busy_total",
			Help: "Total number of accept attempts that found the project lock held",
		},
	)

	// Неудачные публикации событий
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_event_publish_failures_total",
			Help: "Total number of engagement events that could not be published",
		},
		[]string{"type"},
	)

	// Количество кандидатов в рекомендациях
	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates",
			Help:    "Number of ranked freelancers per recommendation request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// RecordHTTPRequestDuration записывает длительность HTTP-запроса.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementTransition увеличивает счётчик переходов состояния.
func IncrementTransition(entity, status string) {
	EngagementTransitions.WithLabelValues(entity, status).Inc()
}

// IncrementAcceptConflict увеличивает счётчик проигранных гонок.
func IncrementAcceptConflict() {
	AcceptConflicts.Inc()
}

// IncrementAcceptLockBusy увеличивает счётчик принятий при занятой блокировке.
func IncrementAcceptLockBusy() {
	AcceptLockBusy.Inc()
}

// IncrementEventPublishFailure увеличивает счётчик неудачных публикаций.
func IncrementEventPublishFailure(eventType string) {
	EventPublishFailures.WithLabelValues(eventType).Inc()
}

// ObserveRecommendationCandidates записывает размер ранжированного списка.
func ObserveRecommendationCandidates(n int) {
	RecommendationCandidates.Observe(float64(n))
}
