package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryan0dhankhar/crm/internal/featureflags"
	"github.com/aryan0dhankhar/crm/internal/handler"
	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/crm/internal/observability/metrics"
	"github.com/aryan0dhankhar/crm/internal/observability/tracing"
	"github.com/aryan0dhankhar/crm/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/crm/internal/reliability/retry"
	"github.com/aryan0dhankhar/crm/internal/repository"
	"github.com/aryan0dhankhar/crm/internal/security/audit"
	"github.com/aryan0dhankhar/crm/internal/security/middleware"
	"github.com/aryan0dhankhar/crm/internal/security/ratelimit"
	"github.com/aryan0dhankhar/crm/internal/service"
	"github.com/aryan0dhankhar/crm/pkg/cache"
	"github.com/aryan0dhankhar/crm/pkg/config"
	"github.com/aryan0dhankhar/crm/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.ForEnvironment(cfg.Environment, cfg.LogLevel)
	log.Info("starting CRM API server",
		slog.String("environment", cfg.Environment),
		slog.String("db_driver", cfg.DBDriver),
	)
	for _, f := range featureflags.Snapshot() {
		log.Info("feature flag", slog.String("flag", f.Name), slog.Bool("enabled", f.Enabled))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Open the database, then migrate and seed it
	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "database connect", func(ctx context.Context) (*database.ConnectionPool, error) {
		return database.NewConnectionPool(ctx, &database.Config{
			Driver:          cfg.DBDriver,
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		}, log)
	})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	db := pool.GetDB()
	if err := database.Migrate(ctx, db); err != nil {
		log.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.Seed(ctx, db); err != nil {
		log.Error("failed to seed database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Connect Redis when configured; rate limiting and the stage cache
	// fall back to process memory without it
	localLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	var (
		limiter    ratelimit.Allower = localLimiter
		stageCache cache.Store       = cache.NewMemory()
		redisPing  handler.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := retry.Do(ctx, retry.DefaultConfig(), log, "redis connect", func(ctx context.Context) (*redis.Client, error) {
			return redis.NewClient(ctx, cfg.RedisURL, log)
		})
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()

		breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
		breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
			log.Warn("redis circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		})
		limiter = ratelimit.NewRedisLimiter(redisClient, localLimiter, breaker, log)
		stageCache = redis.NewCache(redisClient, "crm:cache:", breaker, log)
		redisPing = redisClient
	} else {
		log.Info("REDIS_URL not set: using in-memory rate limiting and cache")
	}

	// 6. Initialize repositories
	companyRepo := repository.NewCompanyRepository(db, log)
	contactRepo := repository.NewContactRepository(db, log)
	leadRepo := repository.NewLeadRepository(db, log)
	stageRepo := repository.NewStageRepository(db, log)
	dealRepo := repository.NewDealRepository(db, log)
	activityRepo := repository.NewActivityRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	dashboardRepo := repository.NewDashboardRepository(db, log)

	// 7. Initialize services
	deps := service.Deps{Tx: repository.NewTransactor(db), Logger: log}
	leadService := service.NewLeadService(leadRepo, contactRepo, activityRepo, deps)
	contactService := service.NewContactService(contactRepo, dealRepo, activityRepo, deps)
	companyService := service.NewCompanyService(companyRepo, contactRepo, dealRepo, activityRepo, deps)
	dealService := service.NewDealService(dealRepo, stageRepo, activityRepo, deps)
	pipelineService := service.NewPipelineService(stageRepo, stageCache, cfg.StageCacheTTL, deps)
	activityService := service.NewActivityService(activityRepo, cfg.DefaultUserID, deps)
	dashboardService := service.NewDashboardService(dashboardRepo, activityRepo, deps)
	userService := service.NewUserService(userRepo)

	// 8. Setup HTTP routes
	rs := handler.NewResponder(log, cfg.IsDevelopment())
	mux := handler.NewRouter(cfg.APIPrefix, rs,
		handler.NewHealthHandler(handler.PingFunc(pool.Health), redisPing, rs, log),
		handler.NewLeadHandler(leadService, rs),
		handler.NewContactHandler(contactService, rs),
		handler.NewCompanyHandler(companyService, rs),
		handler.NewDealHandler(dealService, rs),
		handler.NewPipelineHandler(pipelineService, rs),
		handler.NewActivityHandler(activityService, rs),
		handler.NewDashboardHandler(dashboardService, rs),
		handler.NewUserHandler(userService, rs),
	)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Chain middleware: trace -> request ID -> recover -> CORS -> metrics -> rate limit -> audit -> content type
	auditLogger := audit.NewLogger(log)
	var chain http.Handler = mux
	chain = middleware.ValidateJSONContentType(log)(chain)
	chain = middleware.Audit(auditLogger, cfg.APIPrefix, cfg.DefaultUserID)(chain)
	chain = middleware.RateLimit(limiter, cfg.APIPrefix, log)(chain)
	chain = metrics.HTTPMetricsMiddleware(chain)
	chain = middleware.CORS(cfg.CORSAllowedOrigins)(chain)
	chain = middleware.Recover(log)(chain)
	chain = middleware.RequestID(log)(chain)
	rootHandler := tracing.HTTPHandler(chain)

	// 9. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("api_prefix", cfg.APIPrefix),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Duration("rate_limit_window", cfg.RateLimitWindow),
		slog.Bool("redis", cfg.RedisURL != ""),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	localLimiter.Stop()
	log.Info("server stopped")
}
