package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jwalitptl/homecare-api/internal/config"
	"github.com/jwalitptl/homecare-api/internal/email"
	"github.com/jwalitptl/homecare-api/internal/repository/storage"
	"github.com/jwalitptl/homecare-api/internal/router"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

func main() {
	configPath := flag.String("config", os.Getenv("HOMECARE_CONFIG"), "path to config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.FromConfig(cfg.Log.Level, cfg.Log.Format)

	store, err := storage.Open(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to open store", "driver", cfg.Database.Driver)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Metrics.Namespace, reg)

	r, err := router.Build(cfg, router.Deps{
		Store:    store,
		Logger:   log,
		Metrics:  m,
		Gatherer: reg,
		Mailer:   email.NewLogService(log),
	})
	if err != nil {
		log.Fatal(err, "failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
