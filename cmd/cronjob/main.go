package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/config"
	"carrental-storefront/internal/jobs"
	"carrental-storefront/internal/logger"
	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/scheduler"
	"carrental-storefront/internal/service"
	"carrental-storefront/internal/store"
)

func main() {
	godotenv.Load()

	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-stale-reservations', 'flush-availability-sync', 'send-overdue-reminders', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Storefront Cronjob Runner...", "log_level", cfg.Log.Level)

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
	} else {
		mailer = service.NewNoopMailer()
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

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(stores, mailer, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cronScheduler.Stop()
	logger.Info("Cronjob runner stopped")
}

// runJobOnce executes a single named job
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "expire-stale-reservations":
		jobRunner.ExpireStaleReservations()
	case "flush-availability-sync":
		jobRunner.FlushAvailabilitySync()
	case "send-overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "all":
		jobRunner.RunAllMaintenanceJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		log.Fatalf("Unknown job name: %s", jobName)
	}
}
