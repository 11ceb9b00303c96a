package store

import (
	"context"
	"time"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/service"
)

// Options carries the dependencies and tunables the store graph needs.
type Options struct {
	Snapshots cache.Snapshots
	Remote    remote.API
	Mailer    service.Mailer

	OverdueHourlyFee int
	HoldWindowHours  int
	SyncRetries      int
	SyncBackoff      time.Duration
}

// Stores is the wired domain-state layer: four cooperating stores
// constructed once at application start with explicit dependencies, plus
// the availability reconciliation worker.
type Stores struct {
	Cars          *CarStore
	Reservations  *ReservationStore
	Bookings      *BookingStore
	Notifications *NotificationStore
	Syncer        *AvailabilitySyncer
}

// New builds and cross-wires the stores and starts the availability syncer.
func New(ctx context.Context, opts Options) *Stores {
	if opts.Mailer == nil {
		opts.Mailer = service.NewNoopMailer()
	}

	syncer := NewAvailabilitySyncer(opts.Remote, opts.SyncRetries, opts.SyncBackoff)
	notifications := NewNotificationStore(ctx, opts.Snapshots)
	cars := NewCarStore(ctx, opts.Snapshots, syncer)
	bookings := NewBookingStore(ctx, opts.Snapshots, cars, notifications, opts.Mailer, opts.OverdueHourlyFee)
	reservations := NewReservationStore(ctx, opts.Snapshots, opts.Remote, cars, notifications, opts.Mailer,
		time.Duration(opts.HoldWindowHours)*time.Hour)

	// Referential-integrity lookups cross store boundaries by function, not
	// by reaching into another store's state.
	cars.SetReferenceChecks(reservations.IsCarReserved, bookings.HasActiveForCar)
	reservations.SetCarInUseCheck(bookings.HasActiveForCar)

	syncer.Start()

	return &Stores{
		Cars:          cars,
		Reservations:  reservations,
		Bookings:      bookings,
		Notifications: notifications,
		Syncer:        syncer,
	}
}

// Close stops the background reconciliation worker.
func (s *Stores) Close() {
	s.Syncer.Stop()
}
