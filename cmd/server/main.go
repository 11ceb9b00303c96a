package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"carrental-storefront/internal/api"
	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/config"
	"carrental-storefront/internal/jobs"
	"carrental-storefront/internal/logger"
	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/scheduler"
	"carrental-storefront/internal/security"
	"carrental-storefront/internal/service"
	"carrental-storefront/internal/store"
)

func main() {
	godotenv.Load()

	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Car Rental Storefront...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Upstream configuration", "base_url", cfg.Remote.BaseURL)

	// Initialize the durable cache database
	db, err := sql.Open("postgres", cfg.GetCacheConnectionString())
	if err != nil {
		logger.Error("Failed to connect to cache database", "error", err)
		log.Fatalf("Failed to connect to cache database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping cache database", "error", err)
		log.Fatalf("Failed to ping cache database: %v", err)
	}
	ctx := context.Background()
	if err := cache.EnsureSchema(ctx, db); err != nil {
		logger.Error("Failed to ensure cache schema", "error", err)
		log.Fatalf("Failed to ensure cache schema: %v", err)
	}
	logger.Info("Cache database connection established")

	// Initialize the upstream API client
	remoteClient := remote.NewClient(
		cfg.Remote.BaseURL,
		cfg.Remote.BearerToken,
		time.Duration(cfg.Remote.TimeoutSeconds)*time.Second,
	)

	// Initialize the mailer
	var mailer service.Mailer
	if cfg.Mail.SendGridAPIKey != "" {
		mailer = service.NewSendGridMailer(cfg.Mail.SendGridAPIKey, cfg.Mail.FromEmail, cfg.Mail.FromName, cfg.Mail.AdminEmail)
		logger.Info("SendGrid mailer configured", "admin_email", cfg.Mail.AdminEmail)
	} else {
		mailer = service.NewNoopMailer()
		logger.Warn("No SendGrid API key configured, email delivery disabled")
	}

	// Initialize the domain stores
	stores := store.New(ctx, store.Options{
		Snapshots:        cache.NewPostgresSnapshots(db),
		Remote:           remoteClient,
		Mailer:           mailer,
		OverdueHourlyFee: cfg.Rental.OverdueHourlyFee,
		HoldWindowHours:  cfg.Rental.HoldWindowHours,
		SyncRetries:      cfg.Remote.SyncRetries,
	})
	defer stores.Close()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Scheduler
	jobRunner := jobs.NewJobRunner(stores, mailer, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// Set up HTTP server
	router := api.NewRouter(api.RouterDeps{
		Stores:          stores,
		Remote:          remoteClient,
		Tokens:          tokenManager,
		SecurityDeposit: cfg.Rental.SecurityDeposit,
	})

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      corsHandler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
