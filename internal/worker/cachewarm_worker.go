package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/qaboard/internal/reliability/retry"
	"github.com/yourorg/qaboard/internal/service"
)

// CacheWarmWorker periodically re-reads the first page of the hot
// question listings into the shared list cache so front-page reads stay
// warm between invalidations
type CacheWarmWorker struct {
	questions *service.QuestionService
	logger    *slog.Logger
	interval  time.Duration
	retryCfg  *retry.Config
}

// NewCacheWarmWorker creates a new cache warm worker
func NewCacheWarmWorker(questions *service.QuestionService, logger *slog.Logger, interval time.Duration) *CacheWarmWorker {
	return &CacheWarmWorker{
		questions: questions,
		logger:    logger,
		interval:  interval,
		retryCfg: &retry.Config{
			MaxAttempts:       3,
			InitialBackoff:    200 * time.Millisecond,
			MaxBackoff:        5 * time.Second,
			BackoffMultiplier: 2.0,
		},
	}
}

// Start begins the warm loop and blocks until the context is cancelled
func (w *CacheWarmWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cache warm worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cache warm worker stopped")
			return
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

func (w *CacheWarmWorker) warm(ctx context.Context) {
	_, err := retry.Do(ctx, w.retryCfg, w.logger, "warm_hot_lists", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.questions.RefreshHotLists(ctx)
	})
	if err != nil {
		w.logger.Error("cache warm failed", slog.String("error", err.Error()))
	}
}
