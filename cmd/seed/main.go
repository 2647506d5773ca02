package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/user/erp-api/internal/adapter/repository/postgres"
	"github.com/user/erp-api/internal/pkg/config"
	"github.com/user/erp-api/internal/pkg/logger"
	"github.com/user/erp-api/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

// Seeds the default category catalog for one tenant. Safe to run repeatedly:
// already-present codes are left untouched.
func main() {
	tenantID := flag.String("tenant", "", "tenant id to seed")
	flag.Parse()

	if *tenantID == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -tenant <tenant-id>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)

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

	tenantRepo := postgres.NewTenantCategoryRepository(db, logger)
	globalRepo := postgres.NewGlobalCategoryRepository(db, logger)
	expenseRepo := postgres.NewExpenseRepository(db)

	service := usecase.NewCategoryService(tenantRepo, globalRepo, expenseRepo, nil, nil, nil, logger)

	res, err := service.SeedDefaults(context.Background(), *tenantID)
	if err != nil {
		logger.Error("seeding failed", "tenant_id", *tenantID, "error", err)
		os.Exit(1)
	}

	fmt.Printf("tenant %s: %d created, %d already present\n", *tenantID, res.Created, res.Existing)
}
