package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/waxhands/workshop-backend/internal/adapters/primary/http"
	mw "github.com/waxhands/workshop-backend/internal/adapters/primary/http/middleware"
	"github.com/waxhands/workshop-backend/internal/adapters/primary/websocket"
	"github.com/waxhands/workshop-backend/internal/adapters/secondary/postgres"
	"github.com/waxhands/workshop-backend/internal/auth"
	"github.com/waxhands/workshop-backend/internal/config"
	"github.com/waxhands/workshop-backend/internal/core/ports"
	"github.com/waxhands/workshop-backend/internal/core/services"
	"github.com/waxhands/workshop-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Connection Audit Trail (optional)
	var auditRecorder ports.ConnectionAuditRecorder
	var auditPool *pgxpool.Pool
	if cfg.Audit.Enabled {
		poolConfig, err := pgxpool.ParseConfig(cfg.Audit.DatabaseURL)
		if err != nil {
			logger.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Audit.MaxOpenConns)
		poolConfig.MinConns = int32(cfg.Audit.MaxIdleConns)
		poolConfig.MaxConnLifetime = cfg.Audit.ConnMaxLifetime

		auditPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer auditPool.Close()

		if err := auditPool.Ping(ctx); err != nil {
			logger.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		logger.Info("audit database connection established")

		auditRecorder = postgres.NewConnectionAuditRepository(auditPool)
	}

	// 4. Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(websocket.Config{
		QueueSize:      cfg.WebSocket.EventQueueSize,
		StaleThreshold: cfg.Liveness.StaleThreshold,
		SweepInterval:  cfg.Liveness.SweepInterval,
	}, auditRecorder, logger)
	go hub.Run(ctx)

	// 5. Services (Core)
	notificationService := services.NewNotificationService(hub, logger)

	// 6. Handlers (Primary Adapters)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger)
	notifyHandler := httpAdapter.NewNotifyHandler(notificationService, logger)
	statsHandler := httpAdapter.NewStatsHandler(hub, logger)
	healthHandler := httpAdapter.NewHealthHandler(healthChecker(auditPool), hub, cfg.App.Version)

	// 7. Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
	}

	// 8. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.InternalAPIKeyHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rateLimiter != nil {
		r.Use(rateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (identity resolution is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Publish surface for the CRUD service
		r.Group(func(r chi.Router) {
			r.Use(mw.InternalAPIKey(cfg.App.InternalAPIKey))
			r.Post("/events", notifyHandler.HandlePublish)
		})

		// Diagnostics, admin only
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Use(mw.RequireAdmin)
			r.Get("/stats", statsHandler.HandleStats)
		})
	})

	// 9. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

// healthChecker adapts the pgx pool to the health handler's interface while
// keeping a typed nil out of the interface value when auditing is disabled.
func healthChecker(pool *pgxpool.Pool) httpAdapter.HealthChecker {
	if pool == nil {
		return nil
	}
	return pool
}
