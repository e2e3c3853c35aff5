package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/qaboard/internal/database"
	"github.com/yourorg/qaboard/internal/featureflags"
	"github.com/yourorg/qaboard/internal/handler"
	"github.com/yourorg/qaboard/internal/infrastructure/logger"
	"github.com/yourorg/qaboard/internal/infrastructure/redis"
	"github.com/yourorg/qaboard/internal/observability/metrics"
	"github.com/yourorg/qaboard/internal/observability/tracing"
	"github.com/yourorg/qaboard/internal/repository"
	"github.com/yourorg/qaboard/internal/security"
	"github.com/yourorg/qaboard/internal/security/audit"
	"github.com/yourorg/qaboard/internal/security/auth"
	"github.com/yourorg/qaboard/internal/security/middleware"
	"github.com/yourorg/qaboard/internal/security/ratelimit"
	"github.com/yourorg/qaboard/internal/service"
	"github.com/yourorg/qaboard/internal/worker"
	"github.com/yourorg/qaboard/pkg/cache"
	"github.com/yourorg/qaboard/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting qaboard server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "qaboard", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Open the database and apply migrations
	db, err := database.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	// 5. Initialize Redis. Listings fall back to the database when Redis
	// is down, so a failed connection only disables the cache.
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, list cache disabled", slog.String("error", err.Error()))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// 6. Initialize repositories
	userRepo := repository.NewPostgresUserRepository(db, log)
	questionRepo := repository.NewPostgresQuestionRepository(db, log)
	answerRepo := repository.NewPostgresAnswerRepository(db, log)
	voteRepo := repository.NewPostgresVoteRepository(db, log)

	// 7. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "qaboard", cfg.TokenTTL)
	authzService := security.NewAuthorizationService(log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 8. Initialize services
	listCache := service.NewListCache(redisClient, cfg.ListCacheTTL, log)
	authService := service.NewAuthService(userRepo, tokenManager, log)
	questionService := service.NewQuestionService(questionRepo, answerRepo, listCache, cache.New(), cfg.PageSize, log)
	voteService := service.NewVoteService(answerRepo, voteRepo, questionService, auditLogger, log)
	acceptService := service.NewAcceptService(questionRepo, answerRepo, authzService, questionService, auditLogger, log)

	// 9. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	questionHandler := handler.NewQuestionHandler(questionService, log)
	answerHandler := handler.NewAnswerHandler(questionService, log)
	voteHandler := handler.NewVoteHandler(voteService, log)
	acceptHandler := handler.NewAcceptHandler(acceptService, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// 10. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/questions", questionHandler.Create)
	mux.HandleFunc("GET /api/questions", questionHandler.List)
	mux.HandleFunc("GET /api/questions/{id}", questionHandler.Get)
	mux.HandleFunc("POST /api/questions/{id}/answers", answerHandler.Create)
	mux.HandleFunc("POST /api/questions/{id}/accept", acceptHandler.Accept)
	mux.HandleFunc("POST /api/answers/{id}/vote", voteHandler.Cast)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> content type -> JWT -> rate limit -> CORS.
	// JWT runs before the rate limiter so per-user buckets see the claims.
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(
				middleware.JWTMiddleware(tokenManager, log)(
					middleware.RateLimitMiddleware(rateLimiter, cfg.LoginRateLimit, cfg.LoginRateLimitWindow, log)(handlerWithCORS),
				),
			),
		),
		log,
	)

	// 11. Start cache warm worker in background
	if featureflags.Enabled("cache_warm") && redisClient != nil {
		warmWorker := worker.NewCacheWarmWorker(questionService, log, cfg.CacheWarmInterval)
		go warmWorker.Start(ctx)
	}

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "qaboard"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop background workers
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := audit.WithRequestID(r.Context(), reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
