package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vertice-erp/vertice-erp/internal/app"
	"github.com/vertice-erp/vertice-erp/internal/auth"
	"github.com/vertice-erp/vertice-erp/internal/clients"
	"github.com/vertice-erp/vertice-erp/internal/dashboard"
	"github.com/vertice-erp/vertice-erp/internal/export"
	"github.com/vertice-erp/vertice-erp/internal/goals"
	"github.com/vertice-erp/vertice-erp/internal/materials"
	"github.com/vertice-erp/vertice-erp/internal/observability"
	"github.com/vertice-erp/vertice-erp/internal/orders"
	"github.com/vertice-erp/vertice-erp/internal/platform/cache"
	"github.com/vertice-erp/vertice-erp/internal/platform/db"
	"github.com/vertice-erp/vertice-erp/internal/settlement"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

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

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Error("migrate schema", slog.Any("error", err))
		os.Exit(1)
	}

	// tokens live in Redis, so the API cannot come up without it
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

	tokens := auth.NewTokenManager(redisClient, cfg.TokenTTL)
	authSvc := auth.NewService(auth.NewRepository(pool), tokens)
	if err := authSvc.EnsureDefaultAdmin(ctx, logger, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("seed admin", slog.Any("error", err))
		os.Exit(1)
	}
	authMW := auth.Middleware{Tokens: tokens, Logger: logger}

	dashCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashSvc := dashboard.NewService(dashboard.NewRepository(pool), dashCache)

	clientSvc := clients.NewService(clients.NewRepository(pool))
	materialRepo := materials.NewRepository(pool)
	materialSvc := materials.NewService(materialRepo)
	orderRepo := orders.NewRepository(pool)
	orderSvc := orders.NewService(orderRepo)

	settleSvc := settlement.NewService(settlement.ServiceParams{
		Repo:      settlement.NewRepository(pool),
		Orders:    orderRepo,
		Materials: materialRepo,
		Mode:      settlement.CommissionMode(cfg.CommissionMode),
		Remainder: settlement.RemainderPolicy(cfg.InstallmentRemainder),
		Cache:     dashCache,
		Logger:    logger,
	})

	goalSvc := goals.NewService(goals.NewRepository(pool))

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthMiddleware:    authMW,
		AuthHandler:       auth.NewHandler(authSvc),
		ClientsHandler:    clients.NewHandler(clientSvc),
		MaterialsHandler:  materials.NewHandler(materialSvc),
		OrdersHandler:     orders.NewHandler(orderSvc),
		SettlementHandler: settlement.NewHandler(settleSvc),
		DashboardHandler:  dashboard.NewHandler(dashSvc),
		GoalsHandler:      goals.NewHandler(goalSvc),
		ExportHandler:     export.NewHandler(export.NewRepository(pool)),
		Metrics:           metrics,
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
