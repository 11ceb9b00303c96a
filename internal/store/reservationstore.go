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
	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/service"
)

// ReservationStore owns the pending-to-active reservation lifecycle. The
// upstream API is the source of truth: creates and updates only land in the
// local cache once the server has acknowledged them.
type ReservationStore struct {
	mu           sync.RWMutex
	snaps        cache.Snapshots
	api          remote.API
	cars         *CarStore
	notes        *NotificationStore
	mailer       service.Mailer
	reservations []domain.Reservation

	inflight   inflightGroup
	holdWindow time.Duration
	now        func() time.Time

	// carInUse reports whether a booking still holds the car; injected at
	// wiring time to avoid a store cycle.
	carInUse func(carID string) bool
}

// NewReservationStore loads reservations from the durable cache; missing or
// corrupt data starts empty (the upstream list is fetched per user).
func NewReservationStore(ctx context.Context, snaps cache.Snapshots, api remote.API, cars *CarStore, notes *NotificationStore, mailer service.Mailer, holdWindow time.Duration) *ReservationStore {
	if holdWindow <= 0 {
		holdWindow = 48 * time.Hour
	}
	s := &ReservationStore{
		snaps:      snaps,
		api:        api,
		cars:       cars,
		notes:      notes,
		mailer:     mailer,
		holdWindow: holdWindow,
		now:        time.Now,
	}

	payload, err := snaps.Load(ctx, cache.KeyReservations)
	if err == nil {
		if err := json.Unmarshal(payload, &s.reservations); err != nil {
			logger.Warn("Corrupt reservations snapshot, starting empty", "error", err)
			s.reservations = nil
		}
	}
	return s
}

// SetCarInUseCheck installs the booking lookup consulted before restoring
// availability.
func (s *ReservationStore) SetCarInUseCheck(check func(carID string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carInUse = check
}

func (s *ReservationStore) persist(ctx context.Context) {
	payload, err := json.Marshal(s.reservations)
	if err != nil {
		logger.Error("Failed to serialize reservations", "error", err)
		return
	}
	if err := s.snaps.Save(ctx, cache.KeyReservations, payload); err != nil {
		logger.Error("Failed to persist reservations snapshot", "error", err)
	}
}

// FetchForUser requests the authoritative list from the upstream API. On
// success the local cache is replaced and persisted; on failure the last
// durable snapshot is served instead (stale but available).
func (s *ReservationStore) FetchForUser(ctx context.Context, userID int) []domain.Reservation {
	fetched, err := s.api.ListReservations(ctx, userID)
	if err != nil {
		logger.Warn("Reservation fetch failed, serving cached data", "user_id", userID, "error", err)
		return s.ByUser(userID)
	}

	s.mu.Lock()
	s.reservations = fetched
	s.persist(ctx)
	s.mu.Unlock()
	return s.ByUser(userID)
}

// Add places a reservation. The draft must carry the authenticated
// customer's numeric id; a missing id is rejected before any network call.
// Identical concurrent drafts (a double-clicked Reserve) coalesce into a
// single upstream create and share its server representation. On success
// the server-returned representation (not the local draft) is appended to
// the cache, the car is held and a reservation notification is emitted. On
// remote failure the error propagates and the cache is untouched.
func (s *ReservationStore) Add(ctx context.Context, draft domain.Reservation) (*domain.Reservation, error) {
	if draft.UserID <= 0 {
		return nil, ErrMissingUserID
	}

	key := fmt.Sprintf("reserve:%d:%s:%s:%s", draft.UserID, draft.CarID, draft.StartDate, draft.EndDate)
	val, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.place(ctx, draft)
	})
	if err != nil {
		return nil, err
	}

	created := *(val.(*domain.Reservation))
	return &created, nil
}

// place runs the non-coalesced reservation create: one upstream POST, one
// cache append, one notification and one email per winning caller.
func (s *ReservationStore) place(ctx context.Context, draft domain.Reservation) (*domain.Reservation, error) {
	draft.ID = uuid.NewString()
	draft.Status = domain.ReservationStatusWaiting
	draft.CreatedAt = s.now()
	if draft.CarName == "" {
		if car := s.cars.GetByID(draft.CarID); car != nil {
			draft.CarName = car.Name
		}
	}

	created, err := s.api.CreateReservation(ctx, draft.UserID, &draft)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.reservations = append(s.reservations, *created)
	s.persist(ctx)
	s.mu.Unlock()

	if err := s.cars.SetAvailability(ctx, created.CarID, false); err != nil {
		logger.Warn("Reserved car missing from inventory cache", "car_id", created.CarID, "error", err)
	}

	s.notes.Add(ctx, domain.Notification{
		Type:    domain.NotificationTypeReservation,
		Title:   "New Reservation",
		Message: fmt.Sprintf("%s %s reserved %s (%s to %s).", created.FirstName, created.LastName, created.CarName, created.StartDate, created.EndDate),
		Data: map[string]string{
			"reservationId": created.ID,
			"carId":         created.CarID,
		},
	})
	customerName := fmt.Sprintf("%s %s", created.FirstName, created.LastName)
	if err := s.mailer.SendReservationCreated(ctx, customerName, created.CarName, created.StartDate, created.EndDate, created.TotalPrice); err != nil {
		logger.Warn("Failed to send reservation email", "reservation_id", created.ID, "error", err)
	}
	return created, nil
}

// Update PUTs the full reservation upstream and replaces the local entry
// with the server response. Status changes must follow the state machine.
func (s *ReservationStore) Update(ctx context.Context, res domain.Reservation) (*domain.Reservation, error) {
	s.mu.RLock()
	existing := s.findLocked(res.ID)
	if existing == nil {
		s.mu.RUnlock()
		return nil, ErrReservationNotFound
	}
	if existing.Status != res.Status {
		if existing.Status.IsTerminal() {
			s.mu.RUnlock()
			return nil, ErrTerminalStatus
		}
		if !existing.Status.CanTransition(res.Status) {
			s.mu.RUnlock()
			return nil, ErrInvalidTransition
		}
	}
	s.mu.RUnlock()

	updated, err := s.api.UpdateReservation(ctx, &res)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.reservations {
		if s.reservations[i].ID == updated.ID {
			s.reservations[i] = *updated
			break
		}
	}
	s.persist(ctx)
	s.mu.Unlock()

	if updated.Status.HoldsCar() {
		if err := s.cars.SetAvailability(ctx, updated.CarID, false); err != nil {
			logger.Warn("Reserved car missing from inventory cache", "car_id", updated.CarID, "error", err)
		}
	} else {
		s.restoreAvailability(ctx, updated.CarID)
	}
	return updated, nil
}

// Cancel issues the cancel action upstream. On success the local status
// flips to Cancelled, availability is restored and both the back-office
// and the customer notification are emitted. A miss or an already-terminal
// reservation is an idempotent no-op returning false; a remote failure
// returns false with the error and leaves local state unchanged.
func (s *ReservationStore) Cancel(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	res := s.findLocked(id)
	if res == nil || res.Status.IsTerminal() {
		s.mu.RUnlock()
		return false, nil
	}
	target := *res
	s.mu.RUnlock()

	// Coalesce double-clicked cancels into a single upstream request.
	_, err, _ := s.inflight.Do("cancel:"+id, func() (any, error) {
		return nil, s.api.CancelReservation(ctx, id)
	})
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	flipped := false
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			if s.reservations[i].Status.IsTerminal() {
				// A coalesced concurrent cancel already finalized it.
				s.mu.Unlock()
				return true, nil
			}
			s.reservations[i].Status = domain.ReservationStatusCancelled
			flipped = true
			break
		}
	}
	if flipped {
		s.persist(ctx)
	}
	s.mu.Unlock()

	s.restoreAvailability(ctx, target.CarID)

	customerName := fmt.Sprintf("%s %s", target.FirstName, target.LastName)
	s.notes.Add(ctx, domain.Notification{
		Type:    domain.NotificationTypeCancellation,
		Title:   "Reservation Cancelled",
		Message: fmt.Sprintf("%s cancelled the reservation for %s.", customerName, target.CarName),
		Data: map[string]string{
			"reservationId": id,
			"carId":         target.CarID,
		},
	})
	s.notes.Add(ctx, domain.Notification{
		Type:    domain.NotificationTypeCancellation,
		Title:   "Reservation Cancelled",
		Message: fmt.Sprintf("Your reservation for %s has been cancelled.", target.CarName),
		Data: map[string]string{
			"reservationId": id,
			"userId":        fmt.Sprintf("%d", target.UserID),
		},
	})
	if err := s.mailer.SendReservationCancelled(ctx, customerName, target.CarName); err != nil {
		logger.Warn("Failed to send cancellation email", "reservation_id", id, "error", err)
	}
	return true, nil
}

// ConvertToBooking flips the reservation to Converted locally and returns a
// booking draft prefilled from it. The caller hands the draft to
// BookingStore.Add; there is no automatic cross-store call. Returns nil
// (no error) when the id is unknown.
func (s *ReservationStore) ConvertToBooking(ctx context.Context, id string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.findLocked(id)
	if res == nil {
		return nil, nil
	}
	if res.Status.IsTerminal() {
		return nil, ErrTerminalStatus
	}
	if !res.Status.CanTransition(domain.ReservationStatusConverted) {
		return nil, ErrInvalidTransition
	}

	res.Status = domain.ReservationStatusConverted
	s.persist(ctx)

	return &domain.Booking{
		ReservationID: res.ID,
		CarID:         res.CarID,
		UserID:        res.UserID,
		CustomerName:  fmt.Sprintf("%s %s", res.FirstName, res.LastName),
		CarName:       res.CarName,
		StartDate:     res.StartDate,
		EndDate:       res.EndDate,
		TotalPrice:    res.TotalPrice,
	}, nil
}

// ExpireStale transitions Waiting for Approval reservations past the hold
// window to Expired, restores availability and emits an expiry
// notification. Returns the number of reservations expired.
func (s *ReservationStore) ExpireStale(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	var expired []domain.Reservation
	for i := range s.reservations {
		r := &s.reservations[i]
		if r.Status == domain.ReservationStatusWaiting && r.CreatedAt.Add(s.holdWindow).Before(now) {
			r.Status = domain.ReservationStatusExpired
			expired = append(expired, *r)
		}
	}
	if len(expired) > 0 {
		s.persist(ctx)
	}
	s.mu.Unlock()

	for _, r := range expired {
		s.restoreAvailability(ctx, r.CarID)
		s.notes.Add(ctx, domain.Notification{
			Type:    domain.NotificationTypeExpiry,
			Title:   "Reservation Expired",
			Message: fmt.Sprintf("The hold on %s expired without approval.", r.CarName),
			Data: map[string]string{
				"reservationId": r.ID,
				"carId":         r.CarID,
			},
		})
	}
	return len(expired)
}

// ByUser returns the customer's reservations sorted by creation time,
// newest first.
func (s *ReservationStore) ByUser(userID int) []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for i := range s.reservations {
		if s.reservations[i].UserID == userID {
			out = append(out, s.reservations[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Active returns the reservations a staff dashboard treats as live.
func (s *ReservationStore) Active() []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for i := range s.reservations {
		switch s.reservations[i].Status {
		case domain.ReservationStatusActive, domain.ReservationStatusPendingConfirmation:
			out = append(out, s.reservations[i])
		}
	}
	return out
}

// IsCarReserved reports whether any non-terminal reservation references the
// car.
func (s *ReservationStore) IsCarReserved(carID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carHeldLocked(carID)
}

// ByCar returns every reservation referencing the car.
func (s *ReservationStore) ByCar(carID string) []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for i := range s.reservations {
		if s.reservations[i].CarID == carID {
			out = append(out, s.reservations[i])
		}
	}
	return out
}

// RecentActivity maps the customer's reservations to dashboard events,
// newest first.
func (s *ReservationStore) RecentActivity(userID int) []domain.RecentActivity {
	reservations := s.ByUser(userID)
	out := make([]domain.RecentActivity, 0, len(reservations))
	for _, r := range reservations {
		action := "created"
		if r.Status == domain.ReservationStatusCancelled {
			action = "cancelled"
		}
		out = append(out, domain.RecentActivity{
			Action:    action,
			CarName:   r.CarName,
			Timestamp: r.CreatedAt,
			Status:    r.Status,
		})
	}
	return out
}

// findLocked returns the live entry for id; callers hold the lock.
func (s *ReservationStore) findLocked(id string) *domain.Reservation {
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			return &s.reservations[i]
		}
	}
	return nil
}

func (s *ReservationStore) carHeldLocked(carID string) bool {
	for i := range s.reservations {
		if s.reservations[i].CarID == carID && s.reservations[i].Status.HoldsCar() {
			return true
		}
	}
	return false
}

// restoreAvailability flips the car back to available unless another
// non-terminal reservation or booking still holds it.
func (s *ReservationStore) restoreAvailability(ctx context.Context, carID string) {
	s.mu.RLock()
	held := s.carHeldLocked(carID)
	inUse := s.carInUse
	s.mu.RUnlock()
	if held || (inUse != nil && inUse(carID)) {
		return
	}
	if err := s.cars.SetAvailability(ctx, carID, true); err != nil {
		logger.Warn("Released car missing from inventory cache", "car_id", carID, "error", err)
	}
}
