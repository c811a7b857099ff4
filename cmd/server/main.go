package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crm-service/internal/api"
	"crm-service/internal/api/handlers"
	"crm-service/internal/cache"
	"crm-service/internal/database"
	"crm-service/internal/engine"
	"crm-service/internal/jobs"
	"crm-service/internal/repository"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := database.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, cfg.MigrationsDir, log); err != nil {
		return err
	}

	productRepo := repository.NewProductRepository(pool)

	// The cache is an optimization, not a dependency: if Redis is down the
	// service runs straight against Postgres.
	if rdb, err := cache.ConnectRedis(cfg); err != nil {
		log.Warn("redis unavailable, running without product cache", "error", err)
	} else {
		defer rdb.Close()
		productRepo = cache.NewCachedProductRepository(productRepo, rdb, log)
	}

	customerRepo := repository.NewCustomerRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	restockRepo := repository.NewRestockRepository(pool)

	eng := engine.New(repository.NewSnapshotLoader(pool))

	router := api.NewRouter(
		handlers.NewCustomerHandler(customerRepo, eng),
		handlers.NewProductHandler(productRepo, eng),
		handlers.NewOrderHandler(orderRepo, eng),
		log,
	)

	healthURL := "http://localhost" + cfg.HTTPAddr + "/healthz"
	if !strings.HasPrefix(cfg.HTTPAddr, ":") {
		healthURL = "http://" + cfg.HTTPAddr + "/healthz"
	}

	runner := jobs.NewRunner(log,
		jobs.Heartbeat(healthURL, log),
		jobs.LowStockRestock(productRepo, restockRepo, log),
		jobs.OrderReminders(eng, log),
		jobs.WeeklyReport(eng, log),
	)
	runner.Start(ctx)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", "error", err)
	}

	runner.Wait()
	return nil
}
