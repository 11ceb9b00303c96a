package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/service"
)

// fakeAPI implements remote.API with counted calls and overridable
// behavior per endpoint.
type fakeAPI struct {
	mu             sync.Mutex
	listCalls      int
	createCalls    int
	updateCalls    int
	cancelCalls    int
	updateCarCalls int

	listFn      func(userID int) ([]domain.Reservation, error)
	createFn    func(userID int, draft *domain.Reservation) (*domain.Reservation, error)
	updateFn    func(res *domain.Reservation) (*domain.Reservation, error)
	cancelFn    func(id string) error
	updateCarFn func(car *domain.Car) error
}

func (f *fakeAPI) ListReservations(_ context.Context, userID int) ([]domain.Reservation, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(userID)
	}
	return nil, nil
}

func (f *fakeAPI) CreateReservation(_ context.Context, userID int, draft *domain.Reservation) (*domain.Reservation, error) {
	f.mu.Lock()
	f.createCalls++
	fn := f.createFn
	f.mu.Unlock()
	if fn != nil {
		return fn(userID, draft)
	}
	created := *draft
	created.ID = "SRV-" + draft.ID
	return &created, nil
}

func (f *fakeAPI) UpdateReservation(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	f.mu.Lock()
	f.updateCalls++
	fn := f.updateFn
	f.mu.Unlock()
	if fn != nil {
		return fn(res)
	}
	updated := *res
	return &updated, nil
}

func (f *fakeAPI) CancelReservation(_ context.Context, id string) error {
	f.mu.Lock()
	f.cancelCalls++
	fn := f.cancelFn
	f.mu.Unlock()
	if fn != nil {
		return fn(id)
	}
	return nil
}

func (f *fakeAPI) UpdateCar(_ context.Context, car *domain.Car) error {
	f.mu.Lock()
	f.updateCarCalls++
	fn := f.updateCarFn
	f.mu.Unlock()
	if fn != nil {
		return fn(car)
	}
	return nil
}

func (f *fakeAPI) CreateCar(_ context.Context, car *domain.Car, _ []remote.Image) (*domain.Car, error) {
	created := *car
	created.ID = "SRV-CAR"
	return &created, nil
}

func (f *fakeAPI) Authenticate(context.Context, string, string) (*remote.AuthResponse, error) {
	return &remote.AuthResponse{Token: "fake"}, nil
}

func (f *fakeAPI) RegisterCustomer(context.Context, *remote.CustomerRegistration) error {
	return nil
}

func (f *fakeAPI) GetCustomer(_ context.Context, id int) (*remote.Customer, error) {
	return &remote.Customer{ID: id}, nil
}

func (f *fakeAPI) UpdateCustomer(context.Context, *remote.Customer) error {
	return nil
}

// newTestStores wires the full store graph against an empty in-memory
// cache and the fake upstream, without starting the sync worker.
func newTestStores(api *fakeAPI, snaps cache.Snapshots) *Stores {
	ctx := context.Background()
	if snaps == nil {
		snaps = cache.NewMemorySnapshots()
	}

	syncer := NewAvailabilitySyncer(api, 3, time.Millisecond)
	notifications := NewNotificationStore(ctx, snaps)
	cars := NewCarStore(ctx, snaps, syncer)
	bookings := NewBookingStore(ctx, snaps, cars, notifications, service.NewNoopMailer(), 0)
	reservations := NewReservationStore(ctx, snaps, api, cars, notifications, service.NewNoopMailer(), 48*time.Hour)

	cars.SetReferenceChecks(reservations.IsCarReserved, bookings.HasActiveForCar)
	reservations.SetCarInUseCheck(bookings.HasActiveForCar)

	return &Stores{
		Cars:          cars,
		Reservations:  reservations,
		Bookings:      bookings,
		Notifications: notifications,
		Syncer:        syncer,
	}
}

func reservationDraft(userID int, carID string) domain.Reservation {
	return domain.Reservation{
		CarID:      carID,
		UserID:     userID,
		FirstName:  "Amal",
		LastName:   "Fernando",
		StartDate:  "2025-05-01",
		EndDate:    "2025-05-08",
		TotalPrice: 31500,
	}
}

func bookingDraft(userID int, carID string) domain.Booking {
	return domain.Booking{
		CarID:        carID,
		UserID:       userID,
		CustomerName: "Amal Fernando",
		CarName:      fmt.Sprintf("Car %s", carID),
		StartDate:    "2025-05-01",
		EndDate:      "2025-05-08",
		TotalPrice:   31500,
	}
}
