package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rielbooks/rielbooks/internal/accounting/accounts"
	"github.com/rielbooks/rielbooks/internal/accounting/journals"
	"github.com/rielbooks/rielbooks/internal/accounting/reports"
	"github.com/rielbooks/rielbooks/internal/app"
	"github.com/rielbooks/rielbooks/internal/inventory"
	"github.com/rielbooks/rielbooks/internal/masterdata/categories"
	"github.com/rielbooks/rielbooks/internal/masterdata/items"
	"github.com/rielbooks/rielbooks/internal/masterdata/units"
	"github.com/rielbooks/rielbooks/internal/observability"
	"github.com/rielbooks/rielbooks/internal/platform/cache"
	"github.com/rielbooks/rielbooks/internal/platform/db"
	"github.com/rielbooks/rielbooks/internal/procurement"
	"github.com/rielbooks/rielbooks/internal/sales"
	"github.com/rielbooks/rielbooks/internal/shared"
	"github.com/rielbooks/rielbooks/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	rate, err := cfg.USDKHRRate()
	if err != nil {
		logger.Error("parse exchange rate", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	unitsRepo := units.NewRepository(pool)
	unitsService := units.NewService(unitsRepo)
	unitsHandler := units.NewHandler(logger, unitsService)

	itemsRepo := items.NewRepository(pool)
	itemsService := items.NewService(itemsRepo)
	itemsHandler := items.NewHandler(logger, itemsService)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, itemsService, logger, metrics, inventory.ServiceConfig{
		AllowNegativeStock: cfg.InventoryAllowNegative,
	})
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	journalsRepo := journals.NewRepository(pool)
	journalsService := journals.NewService(journalsRepo, logger, reportCache, metrics)
	journalsHandler := journals.NewHandler(logger, journalsService)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, reportCache, logger, cfg.ReportCurrency, rate)
	reportsHandler := reports.NewHandler(logger, reportsService)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, itemsService, auditLogger, reportCache, metrics, logger, procurement.PostingAccounts{
		Cash:      cfg.AccountCash,
		Inventory: cfg.AccountInventory,
		Payable:   cfg.AccountPayable,
	})
	procurementHandler := procurement.NewHandler(logger, procurementService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, itemsService, auditLogger, reportCache, metrics, logger, sales.PostingAccounts{
		Cash:      cfg.AccountCash,
		Sales:     cfg.AccountSales,
		Inventory: cfg.AccountInventory,
		COGS:      cfg.AccountCOGS,
	}, sales.ServiceConfig{AllowNegativeStock: cfg.InventoryAllowNegative})
	salesHandler := sales.NewHandler(logger, salesService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		UnitsHandler:       unitsHandler,
		ItemsHandler:       itemsHandler,
		CategoriesHandler:  categoriesHandler,
		InventoryHandler:   inventoryHandler,
		AccountsHandler:    accountsHandler,
		JournalsHandler:    journalsHandler,
		ReportsHandler:     reportsHandler,
		ProcurementHandler: procurementHandler,
		SalesHandler:       salesHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
