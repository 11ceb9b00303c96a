package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/logger"
	"carrental-storefront/internal/service"
	"carrental-storefront/internal/utils"
)

// OverdueSummary is the admin view of an Ongoing booking past its end date.
// Derived at read time; the stored booking is untouched until the return is
// finalized.
type OverdueSummary struct {
	Booking      domain.Booking `json:"booking"`
	OverdueHours int            `json:"overdueHours"`
	OverdueFee   int            `json:"overdueFee"`
}

// BookingStore owns the rental lifecycle once a reservation becomes a
// rental or a rental is created directly.
type BookingStore struct {
	mu       sync.RWMutex
	snaps    cache.Snapshots
	cars     *CarStore
	notes    *NotificationStore
	mailer   service.Mailer
	bookings []domain.Booking

	hourlyFee int
	now       func() time.Time
}

// NewBookingStore loads bookings from the durable cache; missing or corrupt
// data falls back to the built-in seed history.
func NewBookingStore(ctx context.Context, snaps cache.Snapshots, cars *CarStore, notes *NotificationStore, mailer service.Mailer, hourlyFee int) *BookingStore {
	if hourlyFee <= 0 {
		hourlyFee = utils.DefaultOverdueHourlyFee
	}
	s := &BookingStore{
		snaps:     snaps,
		cars:      cars,
		notes:     notes,
		mailer:    mailer,
		hourlyFee: hourlyFee,
		now:       time.Now,
	}

	payload, err := snaps.Load(ctx, cache.KeyBookings)
	if err == nil {
		if err := json.Unmarshal(payload, &s.bookings); err == nil {
			return s
		}
		logger.Warn("Corrupt bookings snapshot, falling back to seed data", "error", err)
	}
	s.bookings = cache.SeedBookings()
	s.persist(ctx)
	return s
}

func (s *BookingStore) persist(ctx context.Context) {
	payload, err := json.Marshal(s.bookings)
	if err != nil {
		logger.Error("Failed to serialize bookings", "error", err)
		return
	}
	if err := s.snaps.Save(ctx, cache.KeyBookings, payload); err != nil {
		logger.Error("Failed to persist bookings snapshot", "error", err)
	}
}

// Add opens a rental: assigns an id, sets status Ongoing and paymentStatus
// Paid, marks the car unavailable and records a booking notification.
func (s *BookingStore) Add(ctx context.Context, draft domain.Booking) domain.Booking {
	s.mu.Lock()
	draft.ID = uuid.NewString()
	draft.Status = domain.BookingStatusOngoing
	draft.PaymentStatus = domain.PaymentStatusPaid
	draft.CreatedAt = s.now()
	draft.ReturnedAt = nil
	s.bookings = append(s.bookings, draft)
	s.persist(ctx)
	s.mu.Unlock()

	if err := s.cars.SetAvailability(ctx, draft.CarID, false); err != nil {
		logger.Warn("Booked car missing from inventory cache", "car_id", draft.CarID, "error", err)
	}

	s.notes.Add(ctx, domain.Notification{
		Type:    domain.NotificationTypeBooking,
		Title:   "New Booking",
		Message: fmt.Sprintf("%s booked %s (%s to %s), total %d.", draft.CustomerName, draft.CarName, draft.StartDate, draft.EndDate, draft.TotalPrice),
		Data: map[string]string{
			"bookingId": draft.ID,
			"carId":     draft.CarID,
			"startDate": draft.StartDate,
			"endDate":   draft.EndDate,
		},
	})
	if err := s.mailer.SendBookingCreated(ctx, draft.CustomerName, draft.CarName, draft.StartDate, draft.EndDate, draft.TotalPrice); err != nil {
		logger.Warn("Failed to send booking email", "booking_id", draft.ID, "error", err)
	}
	return draft
}

// Update replaces the booking by id.
func (s *BookingStore) Update(ctx context.Context, booking domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == booking.ID {
			s.bookings[i] = booking
			s.persist(ctx)
			return &booking, nil
		}
	}
	return nil, ErrBookingNotFound
}

// Complete finalizes a return: status Completed, returnedAt stamped, the
// overdue hours/fee computed and persisted, the optional damage assessment
// attached, availability restored and a return notification emitted.
// Returns nil (no error) when the id is unknown; the caller must check.
func (s *BookingStore) Complete(ctx context.Context, bookingID string, damage *domain.DamageAssessment) (*domain.Booking, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.bookings {
		if s.bookings[i].ID == bookingID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return nil, nil
	}
	if s.bookings[idx].Status != domain.BookingStatusOngoing {
		s.mu.Unlock()
		return nil, ErrTerminalStatus
	}

	now := s.now()
	booking := &s.bookings[idx]
	booking.Status = domain.BookingStatusCompleted
	booking.ReturnedAt = &now
	booking.Damage = damage
	if end, err := booking.EndInstant(); err == nil {
		booking.OverdueHours = utils.OverdueHours(end, now)
		booking.OverdueFee = utils.OverdueFee(end, now, s.hourlyFee)
	}
	completed := *booking
	s.persist(ctx)
	s.mu.Unlock()

	if err := s.cars.SetAvailability(ctx, completed.CarID, true); err != nil {
		logger.Warn("Returned car missing from inventory cache", "car_id", completed.CarID, "error", err)
	}

	s.notes.Add(ctx, domain.Notification{
		Type:    domain.NotificationTypeReturn,
		Title:   "Car Returned",
		Message: fmt.Sprintf("%s returned %s.", completed.CustomerName, completed.CarName),
		Data: map[string]string{
			"bookingId":  completed.ID,
			"carId":      completed.CarID,
			"overdueFee": fmt.Sprintf("%d", completed.OverdueFee),
		},
	})
	if err := s.mailer.SendCarReturned(ctx, completed.CustomerName, completed.CarName, completed.OverdueFee); err != nil {
		logger.Warn("Failed to send return email", "booking_id", completed.ID, "error", err)
	}
	return &completed, nil
}

// ByUser returns the customer's bookings sorted by creation time, newest
// first.
func (s *BookingStore) ByUser(userID int) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for i := range s.bookings {
		if s.bookings[i].UserID == userID {
			out = append(out, s.bookings[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Active returns the Ongoing bookings.
func (s *BookingStore) Active() []domain.Booking {
	return s.byStatus(domain.BookingStatusOngoing)
}

// Completed returns the finished bookings.
func (s *BookingStore) Completed() []domain.Booking {
	return s.byStatus(domain.BookingStatusCompleted)
}

func (s *BookingStore) byStatus(status domain.BookingStatus) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for i := range s.bookings {
		if s.bookings[i].Status == status {
			out = append(out, s.bookings[i])
		}
	}
	return out
}

// ByCar returns every booking referencing the car.
func (s *BookingStore) ByCar(carID string) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for i := range s.bookings {
		if s.bookings[i].CarID == carID {
			out = append(out, s.bookings[i])
		}
	}
	return out
}

// HasActiveForCar reports whether an Ongoing booking references the car.
func (s *BookingStore) HasActiveForCar(carID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.bookings {
		if s.bookings[i].CarID == carID && s.bookings[i].Status.HoldsCar() {
			return true
		}
	}
	return false
}

// Overdue projects the Ongoing bookings past their end date at the given
// instant, with derived hours and fee. Nothing is stored.
func (s *BookingStore) Overdue(now time.Time) []OverdueSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []OverdueSummary
	for i := range s.bookings {
		b := s.bookings[i]
		if b.ProjectStatus(now) != domain.BookingStatusOverdue {
			continue
		}
		end, err := b.EndInstant()
		if err != nil {
			continue
		}
		out = append(out, OverdueSummary{
			Booking:      b,
			OverdueHours: utils.OverdueHours(end, now),
			OverdueFee:   utils.OverdueFee(end, now, s.hourlyFee),
		})
	}
	return out
}
