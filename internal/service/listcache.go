package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/infrastructure/redis"
	"github.com/yourorg/qaboard/internal/observability/metrics"
	"github.com/yourorg/qaboard/internal/reliability/circuitbreaker"
)

const listCachePrefix = "qlist:"

// ListCache stores serialized question list pages in Redis. A circuit
// breaker wraps every call so a Redis outage degrades list reads to the
// database instead of failing or stalling them.
type ListCache struct {
	redis   *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
	logger  *slog.Logger
}

// NewListCache creates a list cache. A nil redis client disables caching.
func NewListCache(redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *ListCache {
	if logger == nil {
		logger = slog.Default()
	}
	cb := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	cb.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("list cache circuit state changed",
			slog.Int("from", int(from)),
			slog.Int("to", int(to)),
		)
	})
	return &ListCache{redis: redisClient, breaker: cb, ttl: ttl, logger: logger}
}

func listCacheKey(filter domain.ListFilter, page int) string {
	return fmt.Sprintf("%s%s:%d", listCachePrefix, filter, page)
}

// Get returns a cached page, or ok=false on miss, outage or open circuit
func (c *ListCache) Get(ctx context.Context, filter domain.ListFilter, page int) ([]*domain.QuestionSummary, bool) {
	if c.redis == nil || !c.breaker.AllowRequest() {
		return nil, false
	}

	data, err := c.redis.Get(ctx, listCacheKey(filter, page))
	if err != nil {
		if redis.IsMiss(err) {
			c.breaker.RecordSuccess()
			metrics.ObserveCache("list", "miss")
			return nil, false
		}
		c.breaker.RecordFailure()
		metrics.ObserveCache("list", "error")
		c.logger.Warn("list cache read failed", slog.String("error", err.Error()))
		return nil, false
	}
	c.breaker.RecordSuccess()

	var summaries []*domain.QuestionSummary
	if err := json.Unmarshal([]byte(data), &summaries); err != nil {
		c.logger.Warn("list cache entry corrupt", slog.String("error", err.Error()))
		return nil, false
	}
	metrics.ObserveCache("list", "hit")
	return summaries, true
}

// Set stores a page, best effort
func (c *ListCache) Set(ctx context.Context, filter domain.ListFilter, page int, summaries []*domain.QuestionSummary) {
	if c.redis == nil || !c.breaker.AllowRequest() {
		return
	}

	data, err := json.Marshal(summaries)
	if err != nil {
		c.logger.Error("failed to marshal list cache entry", slog.String("error", err.Error()))
		return
	}

	if err := c.redis.Set(ctx, listCacheKey(filter, page), string(data), c.ttl); err != nil {
		c.breaker.RecordFailure()
		c.logger.Warn("list cache write failed", slog.String("error", err.Error()))
		return
	}
	c.breaker.RecordSuccess()
}

// InvalidateAll drops every cached page. Called after any write that
// can change list contents or ordering.
func (c *ListCache) InvalidateAll(ctx context.Context) {
	if c.redis == nil || !c.breaker.AllowRequest() {
		return
	}
	if err := c.redis.DeleteByPattern(ctx, listCachePrefix+"*"); err != nil {
		c.breaker.RecordFailure()
		c.logger.Warn("list cache invalidation failed", slog.String("error", err.Error()))
		return
	}
	c.breaker.RecordSuccess()
}
