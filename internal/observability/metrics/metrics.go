package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qaboard_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qaboard_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qaboard_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	questionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qaboard_questions_created_total",
		Help: "Count of questions created",
	})

	answersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qaboard_answers_created_total",
		Help: "Count of answers created",
	})

	votesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qaboard_votes_cast_total",
		Help: "Count of vote casts by direction and outcome",
	}, []string{"direction", "outcome"})

	answersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qaboard_answers_accepted_total",
		Help: "Count of answer acceptances",
	})

	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qaboard_cache_operations_total",
		Help: "Count of cache lookups by cache and result",
	}, []string{"cache", "result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin records a login attempt with "success" or "failure"
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObserveQuestionCreated increments the question counter
func ObserveQuestionCreated() {
	questionsCreated.Inc()
}

// ObserveAnswerCreated increments the answer counter
func ObserveAnswerCreated() {
	answersCreated.Inc()
}

// ObserveVote records a vote cast. Outcome is one of applied, repeated
// or reversed.
func ObserveVote(direction, outcome string) {
	votesCast.WithLabelValues(direction, outcome).Inc()
}

// ObserveAcceptance increments the acceptance counter
func ObserveAcceptance() {
	answersAccepted.Inc()
}

// ObserveCache records a cache lookup with "hit", "miss" or "error"
func ObserveCache(cache, result string) {
	cacheOps.WithLabelValues(cache, result).Inc()
}
