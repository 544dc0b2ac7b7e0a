package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts posts created, labelled by topic.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "piazza_posts_created_total",
		Help: "Total number of posts created by topic",
	}, []string{"topic"})

	// InteractionsRecorded counts like/dislike writes by type and outcome
	// (created, toggled, unchanged).
	InteractionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "piazza_interactions_recorded_total",
		Help: "Total number of interactions recorded by type and outcome",
	}, []string{"type", "outcome"})

	// CommentsCreated counts comments added to posts.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "piazza_comments_created_total",
		Help: "Total number of comments created",
	})

	// ExpiredRejections counts writes refused because the post had expired.
	ExpiredRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "piazza_expired_rejections_total",
		Help: "Total number of writes rejected against expired posts",
	}, []string{"operation"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "piazza_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheRequests counts post cache lookups by result (hit, miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "piazza_cache_requests_total",
		Help: "Total number of post cache lookups by result",
	}, []string{"result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "piazza_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// DatabaseMetrics records query latency for a repository.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
