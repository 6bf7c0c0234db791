package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	appcat "github.com/erp/stockledger/internal/application/catalog"
	appfin "github.com/erp/stockledger/internal/application/finance"
	appinv "github.com/erp/stockledger/internal/application/inventory"
	apppartner "github.com/erp/stockledger/internal/application/partner"
	apptrade "github.com/erp/stockledger/internal/application/trade"
	"github.com/erp/stockledger/internal/infrastructure/cache"
	"github.com/erp/stockledger/internal/infrastructure/config"
	"github.com/erp/stockledger/internal/infrastructure/event"
	"github.com/erp/stockledger/internal/infrastructure/logger"
	"github.com/erp/stockledger/internal/infrastructure/persistence"
	"github.com/erp/stockledger/internal/infrastructure/scheduler"
	"github.com/erp/stockledger/internal/infrastructure/telemetry"
	"github.com/erp/stockledger/internal/interfaces/http/handler"
	"github.com/erp/stockledger/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	flags := pflag.NewFlagSet("stockledger", pflag.ExitOnError)
	envFile := flags.String("env-file", ".env", "dotenv file loaded before reading configuration")
	port := flags.StringP("port", "p", "", "listen port (overrides app.port)")
	showVersion := flags.BoolP("version", "v", false, "print the version and exit")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println(version)
		return
	}

	// A missing dotenv file is normal outside development
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.App.Port = *port
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, telemetry.FromConfig(cfg.Telemetry), log)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = providers.Logs.Attach(log)

	log.Info("starting stockledger",
		zap.String("version", version),
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database_driver", cfg.Database.Driver),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.GormLevel(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentDB(db.DB, cfg.Database.DBName); err != nil {
			return err
		}
	}
	log.Info("database connected")

	idempotency, err := cache.NewIdempotencyStore(cfg, log)
	if err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Warn("error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	items := persistence.NewGormItemRepository(db.DB)
	categories := persistence.NewGormCategoryRepository(db.DB)
	warehouses := persistence.NewGormWarehouseRepository(db.DB)
	vendors := persistence.NewGormVendorRepository(db.DB)
	clients := persistence.NewGormClientRepository(db.DB)
	stocks := persistence.NewGormStockRepository(db.DB)
	alerts := persistence.NewGormStockAlertRepository(db.DB)
	purchaseOrders := persistence.NewGormPurchaseOrderRepository(db.DB)
	salesOrders := persistence.NewGormSalesOrderRepository(db.DB)
	payments := persistence.NewGormPaymentRepository(db.DB)
	ledgerEntries := persistence.NewGormLedgerEntryRepository(db.DB)
	reports := persistence.NewGormProfitLossRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Event bus; alert notifications are deduplicated through the idempotency store
	eventBus := event.NewInMemoryEventBus(log)
	notifier := appinv.NewLowStockNotifier(log)
	eventBus.Subscribe(event.NewIdempotentHandler(notifier, idempotency, cfg.HTTP.IdempotencyTTL, log))
	log.Info("event handlers registered", zap.Strings("low_stock_events", notifier.EventTypes()))

	// Application services
	monitor := appinv.NewAlertMonitor(scope, alerts, log)
	monitor.SetEventPublisher(eventBus)
	stockLedger := appinv.NewStockLedger(scope, stocks, monitor, log, appinv.LedgerConfig{
		MaxLockRetries: cfg.Inventory.MaxLockRetries,
		RetryBackoff:   cfg.Inventory.RetryBackoff,
	})
	stockLedger.SetEventPublisher(eventBus)

	meter := providers.Meter.Meter(cfg.Telemetry.ServiceName)
	if cfg.Telemetry.MetricsEnabled {
		stockMetrics, err := telemetry.NewStockMetrics(meter)
		if err != nil {
			return fmt.Errorf("stock metrics: %w", err)
		}
		stockLedger.SetMetrics(stockMetrics)
		monitor.SetMetrics(stockMetrics)
	}

	ledger := appfin.NewLedgerService(ledgerEntries, log)
	policy := apptrade.NewWarehousePolicy(warehouses, cfg.Inventory.WarehousePolicy, cfg.Inventory.DefaultWarehouseCode)
	purchases := apptrade.NewPurchaseService(scope.Orders(), purchaseOrders, vendors, items, stockLedger, ledger, policy, log)
	purchases.SetEventPublisher(eventBus)
	sales := apptrade.NewSalesService(scope.Orders(), salesOrders, clients, items, stockLedger, ledger, log)
	sales.SetEventPublisher(eventBus)

	handlers := router.Handlers{
		Catalog:   handler.NewCatalogHandler(appcat.NewItemService(items, categories, vendors, log)),
		Partners:  handler.NewPartnerHandler(apppartner.NewPartnerService(warehouses, vendors, clients, log)),
		Inventory: handler.NewInventoryHandler(stockLedger, monitor),
		Purchases: handler.NewPurchaseOrderHandler(purchases),
		Sales:     handler.NewSalesOrderHandler(sales),
		Finance: handler.NewFinanceHandler(
			appfin.NewPaymentService(scope.Finance(), payments, log),
			ledger,
			appfin.NewProfitLossService(salesOrders, purchaseOrders, payments, reports, log),
		),
	}

	// Background alert reconciliation
	if cfg.Alerts.ReconcileEnabled {
		reconcilerCfg := scheduler.DefaultAlertReconcilerConfig()
		reconcilerCfg.Interval = cfg.Alerts.ReconcileInterval
		reconciler := scheduler.NewAlertReconciler(monitor, log, reconcilerCfg)
		if err := reconciler.Start(ctx); err != nil {
			return fmt.Errorf("start alert reconciler: %w", err)
		}
		defer func() {
			if err := reconciler.Stop(context.Background()); err != nil {
				log.Error("error stopping alert reconciler", zap.Error(err))
			}
		}()
		log.Info("alert reconciler started", zap.Duration("interval", reconcilerCfg.Interval))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TracingEnabled: cfg.Telemetry.TracingEnabled,
		Meter:          meter,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.HTTP.IdempotencyTTL,
		Health:         handler.NewHealthHandler(db, version),
		Logger:         log,
	}, handlers)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	stats := eventBus.Stats()
	log.Info("server exited gracefully",
		zap.Int64("events_published", stats.Published),
		zap.Int64("events_failed", stats.Failed),
	)
	return nil
}
