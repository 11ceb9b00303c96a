package jobs

import (
	"context"
	"time"

	"carrental-storefront/internal/logger"
)

// ExpireStaleReservations releases holds on reservations that sat in
// Waiting for Approval past the configured hold window
func (jr *JobRunner) ExpireStaleReservations() {
	jr.runWithRecovery("ExpireStaleReservations", func() {
		ctx := context.Background()

		expired := jr.stores.Reservations.ExpireStale(ctx, time.Now())
		if expired == 0 {
			logger.Debug("No stale reservations to expire")
			return
		}
		logger.Info("Expired stale reservations", "count", expired)
	})
}

// FlushAvailabilitySync retries queued availability updates that failed to
// reach the upstream API
func (jr *JobRunner) FlushAvailabilitySync() {
	jr.runWithRecovery("FlushAvailabilitySync", func() {
		ctx := context.Background()

		pending := jr.stores.Syncer.PendingCount()
		if pending == 0 {
			logger.Debug("Availability sync queue is empty")
			return
		}

		acknowledged := jr.stores.Syncer.Flush(ctx)
		logger.Info("Flushed availability sync queue",
			"pending", pending,
			"acknowledged", acknowledged,
			"remaining", jr.stores.Syncer.PendingCount())
	})
}
