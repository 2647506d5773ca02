package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/user/erp-api/internal/adapter/api"
	"github.com/user/erp-api/internal/adapter/audit"
	"github.com/user/erp-api/internal/adapter/metrics"
	"github.com/user/erp-api/internal/adapter/repository/postgres"
	redisrepo "github.com/user/erp-api/internal/adapter/repository/redis"
	"github.com/user/erp-api/internal/pkg/config"
	"github.com/user/erp-api/internal/pkg/logger"
	"github.com/user/erp-api/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewCategoryMetrics()

	// --- Start Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection and Migrations ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Merged-Listing Cache (optional) ---
	var unionCache usecase.UnionCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, listing cache disabled", "error", err)
		} else {
			unionCache = redisrepo.NewUnionCache(redisClient, cfg.UnionCacheTTL, logger)
		}
	}

	// --- Audit Publisher ---
	var auditPublisher usecase.AuditPublisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := audit.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaAuditTopic, m)
		defer kafkaPublisher.Close()
		auditPublisher = kafkaPublisher
	} else {
		auditPublisher = audit.NewStdoutPublisher(logger)
	}

	// --- Initialize Repositories ---
	tenantRepo := postgres.NewTenantCategoryRepository(db, logger)
	globalRepo := postgres.NewGlobalCategoryRepository(db, logger)
	expenseRepo := postgres.NewExpenseRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// --- Initialize Use Cases and Services ---
	categoryService := usecase.NewCategoryService(tenantRepo, globalRepo, expenseRepo, unionCache, auditPublisher, m, logger)
	globalAdmin := usecase.NewGlobalAdminService(globalRepo, unionCache, auditPublisher, logger)
	authService := usecase.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.LoginMaxFailures, cfg.LoginLockWindow, logger)

	// --- Initialize API Server ---
	router := api.NewRouter(cfg, logger, m, categoryService, globalAdmin, authService)
	apiServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		logger.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
