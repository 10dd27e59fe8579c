package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appinv "github.com/sellerops/backend/internal/application/inventory"
	apporder "github.com/sellerops/backend/internal/application/order"
	apprisk "github.com/sellerops/backend/internal/application/risk"
	"github.com/sellerops/backend/internal/domain/risk"
	"github.com/sellerops/backend/internal/domain/shared"
	"github.com/sellerops/backend/internal/infrastructure/auth"
	"github.com/sellerops/backend/internal/infrastructure/config"
	"github.com/sellerops/backend/internal/infrastructure/fanout"
	"github.com/sellerops/backend/internal/infrastructure/logger"
	"github.com/sellerops/backend/internal/infrastructure/optimizer"
	"github.com/sellerops/backend/internal/infrastructure/persistence"
	"github.com/sellerops/backend/internal/interfaces/http/handler"
	"github.com/sellerops/backend/internal/interfaces/http/middleware"
	"github.com/sellerops/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting seller operations backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	// Repositories
	shopRepo := persistence.NewGormShopRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Event fanout with low-stock alert dedup
	bus := fanout.NewBus(0, log)
	var notifier shared.Notifier = fanout.NewDedupingNotifier(bus, redisClient, cfg.Alerts.DedupWindow, log)

	// External optimization service; nil client means the rule-based engine
	// always runs and restock planning reports unavailable.
	var optimizerClient apprisk.OptimizerClient
	if cfg.Optimizer.BaseURL != "" {
		client, err := optimizer.NewClient(cfg.Optimizer, log)
		if err != nil {
			log.Fatal("Failed to create optimizer client", zap.Error(err))
		}
		optimizerClient = client
	} else {
		log.Warn("No optimizer configured, at-risk analysis will always use the rule-based engine")
	}

	scorer := risk.NewScorer(risk.Thresholds{
		LowStock:       cfg.Alerts.LowStockThreshold,
		NearExpiryDays: cfg.Alerts.NearExpiryDays,
		SalesWindow:    cfg.Alerts.SlowMovingWindow,
	})

	// Application services
	mutator := appinv.NewStockMutator(cfg.Alerts.LowStockThreshold, log)
	intakeService := apporder.NewIntakeService(productRepo, shopRepo, scope, mutator, notifier, log)
	statusService := apporder.NewStatusService(orderRepo, shopRepo, scope, mutator, notifier, log)
	syncService := appinv.NewSyncService(scope, mutator, notifier, log)
	riskService := apprisk.NewService(productRepo, orderRepo, optimizerClient, scorer, notifier, log)

	tokens := auth.NewTokenService(cfg.JWT)

	middleware.SetupValidator()
	engine := router.Setup(router.Handlers{
		System:    handler.NewSystemHandler(db),
		Orders:    handler.NewOrderHandler(intakeService, statusService),
		Inventory: handler.NewInventoryHandler(syncService),
		Risk:      handler.NewRiskHandler(riskService),
		Events:    handler.NewEventsHandler(bus),
	}, tokens, log)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()
	log.Info("Server listening", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
