package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/inventory-service/config"
	database "github.com/duynhne/inventory-service/internal/core"
	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/core/events"
	"github.com/duynhne/inventory-service/internal/core/repository"
	"github.com/duynhne/inventory-service/internal/jobs"
	"github.com/duynhne/inventory-service/internal/logger"
	logicv1 "github.com/duynhne/inventory-service/internal/logic/v1"
	"github.com/duynhne/inventory-service/internal/web"
	"github.com/duynhne/inventory-service/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	logger.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Initialize database connection pool (pgx)
	pool, err := database.Connect(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Database connection pool established")

	if cfg.Database.MigrateOnStartup {
		if err := database.Migrate(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Database migrations applied")
	}

	// Redis backs the rate limiter only; the service runs without it.
	var rdb *redis.Client
	if cfg.RateLimit.Enabled && cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, rate limiting disabled")
			_ = rdb.Close()
			rdb = nil
		} else {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Rate limiting enabled")
		}
		cancel()
	}

	// Audit events go to RabbitMQ when configured, otherwise to the log.
	var publisher domain.EventPublisher = events.LogPublisher{}
	var amqpPublisher *events.AMQPPublisher
	if cfg.Audit.Enabled {
		amqpPublisher, err = events.NewAMQPPublisher(cfg.Audit.URL, cfg.Audit.Queue)
		if err != nil {
			log.Warn().Err(err).Msg("Audit broker unreachable, logging audit events instead")
		} else {
			publisher = amqpPublisher
			log.Info().Str("queue", cfg.Audit.Queue).Msg("Audit publisher connected")
		}
	}

	// Repositories (Core) -> services (Logic) -> handlers (Web)
	users := repository.NewUserRepository(pool)
	hasher := logicv1.NewBcryptHasher(cfg.Security.BcryptCost)
	verifier, err := logicv1.NewCredentialVerifier(users, hasher)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize credential verifier")
	}
	validate := logicv1.NewValidator()
	sessions := logicv1.NewSessionManager(repository.NewSessionRepository(pool), cfg.Session.Secret, cfg.Session.MaxAge)
	authService := logicv1.NewAuthService(users, verifier, sessions, hasher, validate, publisher)
	catalogService := logicv1.NewCatalogService(
		repository.NewCategoryRepository(pool),
		repository.NewItemRepository(pool),
		validate,
	)

	var janitor *jobs.SessionJanitor
	if cfg.Janitor.Enabled {
		janitor, err = jobs.NewSessionJanitor(cfg.Janitor.Schedule, sessions)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize session janitor")
		}
		janitor.Start()
		log.Info().Str("schedule", cfg.Janitor.Schedule).Msg("Session janitor started")
	}

	var isShuttingDown atomic.Bool

	r := web.NewRouter(web.Dependencies{
		Config:       cfg,
		Auth:         authService,
		Catalog:      catalogService,
		Sessions:     sessions,
		Redis:        rdb,
		ShuttingDown: &isShuttingDown,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting inventory service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for the load balancer to notice.
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	// Shutdown context with configurable timeout
	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	// 2. Stop background jobs
	if janitor != nil {
		janitor.Stop(shutdownCtx)
		log.Info().Msg("Session janitor stopped")
	}

	// 3. Close the audit broker and Redis
	if amqpPublisher != nil {
		if err := amqpPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("Audit publisher close error")
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Redis close error")
		}
	}

	// 4. Close database connections
	pool.Close()
	log.Info().Msg("Database pool closed")

	// 5. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}
