package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/azulretail/pos-backend/api/routes"
	authsvc "github.com/azulretail/pos-backend/internal/auth"
	categorysvc "github.com/azulretail/pos-backend/internal/categories"
	employeesvc "github.com/azulretail/pos-backend/internal/employees"
	historysvc "github.com/azulretail/pos-backend/internal/history"
	productsvc "github.com/azulretail/pos-backend/internal/products"
	salesvc "github.com/azulretail/pos-backend/internal/sales"
	"github.com/azulretail/pos-backend/pkg/config"
	"github.com/azulretail/pos-backend/pkg/db"
	"github.com/azulretail/pos-backend/pkg/logger"
	"github.com/azulretail/pos-backend/pkg/metrics"
	"github.com/azulretail/pos-backend/pkg/migrate"
	"github.com/azulretail/pos-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)
	salesMetrics := metrics.NewSalesMetrics(promRegistry)

	historyService, err := historysvc.NewService(historysvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create history service", err)
		os.Exit(1)
	}

	categoriesRepo := categorysvc.NewRepository(dbClient.DB())
	categoryService, err := categorysvc.NewService(categoriesRepo, historyService)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	productsRepo := productsvc.NewRepository(dbClient.DB())
	productService, err := productsvc.NewService(productsRepo, categoriesRepo, historyService)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	salesRepo := salesvc.NewRepository(dbClient.DB())
	saleService, err := salesvc.NewService(salesRepo, productsRepo, historyService, dbClient, salesMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	employeeService, err := employeesvc.NewService(employeesvc.NewRepository(dbClient.DB()), salesRepo, historyService, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create employee service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.NewRepository(dbClient.DB()), historyService, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			map[string]db.Pinger{"postgres": dbClient, "redis": redisClient},
			redisClient,
			promRegistry,
			httpMetrics,
			authService,
			categoryService,
			productService,
			saleService,
			employeeService,
			historyService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	closeErr := multierr.Combine(redisClient.Close(), dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
