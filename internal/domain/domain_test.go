package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_Terminal(t *testing.T) {
	assert.True(t, ReservationStatusCancelled.IsTerminal())
	assert.True(t, ReservationStatusExpired.IsTerminal())
	assert.True(t, ReservationStatusConverted.IsTerminal())
	assert.False(t, ReservationStatusWaiting.IsTerminal())
	assert.False(t, ReservationStatusActive.IsTerminal())
	assert.False(t, ReservationStatusPendingConfirmation.IsTerminal())
}

func TestReservationStatus_CanTransition(t *testing.T) {
	t.Run("Waiting can be approved, cancelled or expired", func(t *testing.T) {
		assert.True(t, ReservationStatusWaiting.CanTransition(ReservationStatusActive))
		assert.True(t, ReservationStatusWaiting.CanTransition(ReservationStatusCancelled))
		assert.True(t, ReservationStatusWaiting.CanTransition(ReservationStatusExpired))
		assert.False(t, ReservationStatusWaiting.CanTransition(ReservationStatusConverted))
	})

	t.Run("Active can convert or cancel", func(t *testing.T) {
		assert.True(t, ReservationStatusActive.CanTransition(ReservationStatusConverted))
		assert.True(t, ReservationStatusActive.CanTransition(ReservationStatusCancelled))
		assert.False(t, ReservationStatusActive.CanTransition(ReservationStatusWaiting))
	})

	t.Run("Terminal statuses permit nothing", func(t *testing.T) {
		for _, s := range []ReservationStatus{ReservationStatusCancelled, ReservationStatusExpired, ReservationStatusConverted} {
			assert.False(t, s.CanTransition(ReservationStatusActive), "from %s", s)
			assert.False(t, s.CanTransition(ReservationStatusCancelled), "from %s", s)
		}
	})
}

func TestBooking_ProjectStatus(t *testing.T) {
	booking := &Booking{
		Status:  BookingStatusOngoing,
		EndDate: "2025-04-20",
	}

	t.Run("Ongoing before end date", func(t *testing.T) {
		now := time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, BookingStatusOngoing, booking.ProjectStatus(now))
	})

	t.Run("Overdue past end date", func(t *testing.T) {
		now := time.Date(2025, 4, 22, 3, 0, 0, 0, time.UTC)
		assert.Equal(t, BookingStatusOverdue, booking.ProjectStatus(now))
	})

	t.Run("Completed never projects overdue", func(t *testing.T) {
		done := &Booking{Status: BookingStatusCompleted, EndDate: "2025-04-20"}
		now := time.Date(2025, 4, 22, 3, 0, 0, 0, time.UTC)
		assert.Equal(t, BookingStatusCompleted, done.ProjectStatus(now))
	})
}

func TestCar_WireStatus(t *testing.T) {
	assert.Equal(t, CarStatusAvailable, (&Car{Available: true}).WireStatus())
	assert.Equal(t, CarStatusBooked, (&Car{Available: false}).WireStatus())
	assert.Equal(t, CarStatusArchived, (&Car{Available: true, Archived: true}).WireStatus())
}
