package jobs

import (
	"carrental-storefront/internal/config"
	"carrental-storefront/internal/logger"
	"carrental-storefront/internal/service"
	"carrental-storefront/internal/store"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	stores *store.Stores
	mailer service.Mailer
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(stores *store.Stores, mailer service.Mailer, cfg *config.Config) *JobRunner {
	return &JobRunner{
		stores: stores,
		mailer: mailer,
		config: cfg,
	}
}

// Config returns the loaded configuration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllMaintenanceJobs runs every scheduled job once (for manual execution)
func (jr *JobRunner) RunAllMaintenanceJobs() {
	jr.ExpireStaleReservations()
	jr.FlushAvailabilitySync()
	jr.SendOverdueReminders()
}
