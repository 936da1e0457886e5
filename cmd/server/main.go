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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/cache"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/config"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/handlers"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/metrics"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories/postgres"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/services"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/utils"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/validator"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/pkg"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(db); err != nil {
		return err
	}

	var testCache cache.CacheService
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	switch {
	case err != nil:
		logger.Warn("Redis unavailable, test snapshots will not be cached", "error", err)
	case redisClient != nil:
		defer redisClient.Close()
		testCache = cache.NewRedisCache(redisClient, "grading", logger)
	}

	repo := postgres.NewRepository(db, testCache, cfg.TestCacheTTL, logger)
	defer repo.Close()

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	submissionService := services.NewSubmissionService(repo, publisher, m, logger, validator.New())
	exportService := services.NewResultExportService(repo, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	handlers.NewHandlerManager(
		submissionService,
		exportService,
		handlers.NewCasdoorVerifier(cfg.Casdoor),
		m,
		repo,
		utils.NewSlogLogger(logger),
	).SetupRoutes(router)

	if !cfg.Casdoor.Enabled() {
		logger.Warn("Casdoor is not configured, callers are identified by the X-User-ID header")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
