package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/homecare-api/internal/config"
	"github.com/jwalitptl/homecare-api/internal/handler"
	"github.com/jwalitptl/homecare-api/internal/middleware"
	"github.com/jwalitptl/homecare-api/internal/repository/storage"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/messaging"
	"github.com/jwalitptl/homecare-api/pkg/messaging/redis"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
	"github.com/jwalitptl/homecare-api/pkg/worker"
)

func newBroker(cfg *config.Config, m *metrics.Metrics) (messaging.Broker, error) {
	if !cfg.Redis.Enabled {
		return messaging.NewLogBroker(log.Logger), nil
	}
	return redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log.Logger, m)
}

func healthServer(port int, h *handler.Handler) *http.Server {
	engine := gin.New()
	engine.Use(middleware.Recovery())
	h.RegisterRoutes(engine)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func main() {
	configPath := flag.String("config", os.Getenv("HOMECARE_CONFIG"), "path to config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	workerID := "worker-" + uuid.NewString()
	logger := logger.FromConfig(cfg.Log.Level, cfg.Log.Format).
		WithFields(map[string]interface{}{"worker_id": workerID})

	store, err := storage.Open(cfg.Database)
	if err != nil {
		logger.Fatal(err, "failed to open store", "driver", cfg.Database.Driver)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Metrics.Namespace, reg)

	broker, err := newBroker(cfg, m)
	if err != nil {
		logger.Fatal(err, "failed to create broker")
	}
	defer broker.Close()

	processor, err := worker.NewOutboxProcessor(
		store,
		messaging.NewEventPublisher(broker, messaging.DefaultChannelPrefix),
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		},
		logger,
		m,
	)
	if err != nil {
		logger.Fatal(err, "invalid outbox configuration")
	}
	cleanup := worker.NewOutboxCleanupWorker(store.Outbox(), cfg.Outbox.Retention, time.Hour, logger)

	srv := healthServer(cfg.Outbox.HealthPort, handler.NewHandler(store, reg))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err, "health check server failed")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	wg.Wait()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "health server forced to shutdown")
	}
}
