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

	"github.com/joho/godotenv"
	"github.com/krishanki/PhonePixie/internal/app"
	"github.com/krishanki/PhonePixie/internal/config"
	"github.com/krishanki/PhonePixie/internal/handlers"
	"github.com/krishanki/PhonePixie/internal/middleware"
	"github.com/krishanki/PhonePixie/internal/services/storage"
	"github.com/krishanki/PhonePixie/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		// It's okay if .env doesn't exist
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting PhonePixie server...")

	metrics := middleware.NewMetrics()
	if cfg.Monitoring.Metrics.Enabled {
		go func() {
			log.WithFields(logrus.Fields{
				"port": cfg.Monitoring.Metrics.Port,
				"path": cfg.Monitoring.Metrics.Path,
			}).Info("Starting metrics server")

			if err := middleware.StartMetricsServer(cfg.Monitoring.Metrics.Port, cfg.Monitoring.Metrics.Path); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	a, err := app.New(cfg, metrics, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize pipeline")
	}

	store, err := storage.NewWindowStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize rate limit storage")
	}
	defer store.Close()

	limiter := middleware.NewRateLimiter(&cfg.RateLimit, store, metrics, log)
	log.WithFields(logrus.Fields{
		"enabled": limiter.Enabled(),
		"limit":   cfg.RateLimit.Limit,
		"window":  cfg.RateLimit.Window,
		"storage": cfg.Storage.Type,
	}).Info("Rate limiter initialized")

	checks := map[string]handlers.HealthCheck{
		"catalog": func(ctx context.Context) error {
			if a.Catalog.Len() == 0 {
				return errors.New("catalog is empty")
			}
			return nil
		},
		"rate_limit_store": store.Ping,
	}
	chat := handlers.NewChatHandler(a.Pipeline, a.Texts, cfg.Server.MaxBodyBytes, log)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handlers.NewRouter(chat, limiter, checks, a.Texts, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}

	log.Info("Server stopped")
}
