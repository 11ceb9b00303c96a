package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/logger"
)

// CarStore is the vehicle inventory cache and the availability authority.
// Availability flips apply locally first and are reconciled upstream by the
// AvailabilitySyncer.
type CarStore struct {
	mu     sync.RWMutex
	snaps  cache.Snapshots
	syncer *AvailabilitySyncer
	cars   []domain.Car // insertion order preserved

	// refChecks report whether any non-terminal reservation/booking still
	// references a car. Injected at wiring time to avoid a store cycle.
	refChecks []func(carID string) bool
}

// NewCarStore loads the inventory from the durable cache; missing or
// corrupt data falls back to the built-in seed inventory.
func NewCarStore(ctx context.Context, snaps cache.Snapshots, syncer *AvailabilitySyncer) *CarStore {
	s := &CarStore{
		snaps:  snaps,
		syncer: syncer,
	}

	payload, err := snaps.Load(ctx, cache.KeyCars)
	if err == nil {
		if err := json.Unmarshal(payload, &s.cars); err == nil {
			return s
		}
		logger.Warn("Corrupt cars snapshot, falling back to seed data", "error", err)
	}
	s.cars = cache.SeedCars()
	s.persist(ctx)
	return s
}

// SetReferenceChecks installs the lookups consulted before a hard delete.
func (s *CarStore) SetReferenceChecks(checks ...func(carID string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refChecks = checks
}

func (s *CarStore) persist(ctx context.Context) {
	payload, err := json.Marshal(s.cars)
	if err != nil {
		logger.Error("Failed to serialize cars", "error", err)
		return
	}
	if err := s.snaps.Save(ctx, cache.KeyCars, payload); err != nil {
		logger.Error("Failed to persist cars snapshot", "error", err)
	}
}

// List returns the inventory snapshot in insertion order.
func (s *CarStore) List() []domain.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Car, len(s.cars))
	copy(out, s.cars)
	return out
}

// GetByID returns a copy of the car, or nil when the id is unknown.
func (s *CarStore) GetByID(id string) *domain.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.cars {
		if s.cars[i].ID == id {
			car := s.cars[i]
			return &car
		}
	}
	return nil
}

// Add assigns a collision-resistant id, defaults the car to available,
// appends it and persists the collection.
func (s *CarStore) Add(ctx context.Context, draft domain.Car) domain.Car {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft.ID = uuid.NewString()
	draft.Available = true
	draft.Archived = false
	s.cars = append(s.cars, draft)
	s.persist(ctx)
	return draft
}

// Adopt appends a car already created upstream, keeping the server-issued
// id. An existing entry with the same id is replaced instead.
func (s *CarStore) Adopt(ctx context.Context, car domain.Car) domain.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cars {
		if s.cars[i].ID == car.ID {
			s.cars[i] = car
			s.persist(ctx)
			return car
		}
	}
	s.cars = append(s.cars, car)
	s.persist(ctx)
	return car
}

// Update replaces the car by id.
func (s *CarStore) Update(ctx context.Context, car domain.Car) (*domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cars {
		if s.cars[i].ID == car.ID {
			s.cars[i] = car
			s.persist(ctx)
			return &car, nil
		}
	}
	return nil, ErrCarNotFound
}

// Remove hard-deletes a car from the inventory. Rejected while any
// non-terminal reservation or booking references it; archive instead.
func (s *CarStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	checks := s.refChecks
	s.mu.Unlock()
	for _, referenced := range checks {
		if referenced(id) {
			return ErrCarReferenced
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cars {
		if s.cars[i].ID == id {
			s.cars = append(s.cars[:i], s.cars[i+1:]...)
			s.persist(ctx)
			return nil
		}
	}
	return ErrCarNotFound
}

// Archive soft-deletes: the car stays in the collection for history but
// leaves the rentable inventory.
func (s *CarStore) Archive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cars {
		if s.cars[i].ID == id {
			s.cars[i].Archived = true
			s.cars[i].Available = false
			s.persist(ctx)
			s.syncer.Enqueue(s.cars[i])
			return nil
		}
	}
	return ErrCarNotFound
}

// SetAvailability updates the local cache synchronously and queues the
// upstream write for reconciliation. The car shows as sync-pending until
// the upstream acknowledges it.
func (s *CarStore) SetAvailability(ctx context.Context, id string, isAvailable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cars {
		if s.cars[i].ID == id {
			s.cars[i].Available = isAvailable
			s.persist(ctx)
			s.syncer.Enqueue(s.cars[i])
			return nil
		}
	}
	return ErrCarNotFound
}

// PendingSync reports whether the car has an availability write the
// upstream has not acknowledged yet.
func (s *CarStore) PendingSync(id string) bool {
	return s.syncer.Pending(id)
}
