package jobs

import (
	"context"
	"time"

	"carrental-storefront/internal/logger"
)

// SendOverdueReminders emails the back office about every Ongoing booking
// past its end date, with the accrued hours and fee
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		overdue := jr.stores.Bookings.Overdue(time.Now())
		if len(overdue) == 0 {
			logger.Debug("No overdue bookings")
			return
		}

		sent := 0
		for _, entry := range overdue {
			b := entry.Booking
			err := jr.mailer.SendOverdueReminder(ctx, b.CustomerName, b.CarName, b.EndDate, entry.OverdueHours, entry.OverdueFee)
			if err != nil {
				logger.Error("Failed to send overdue reminder",
					"booking_id", b.ID,
					"car_id", b.CarID,
					"error", err)
				continue
			}
			sent++
			logger.Debug("Sent overdue reminder",
				"booking_id", b.ID,
				"car_id", b.CarID,
				"overdue_hours", entry.OverdueHours,
				"overdue_fee", entry.OverdueFee)
		}

		logger.Info("Overdue reminders processed", "overdue", len(overdue), "sent", sent)
	})
}
