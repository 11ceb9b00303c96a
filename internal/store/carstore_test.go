package store

import (
	"context"
	"errors"
	"testing"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarStore_SeedOnEmptyCache(t *testing.T) {
	stores := newTestStores(&fakeAPI{}, nil)
	cars := stores.Cars.List()
	require.NotEmpty(t, cars)
	assert.Equal(t, "C001", cars[0].ID)
	assert.True(t, cars[0].Available)
}

func TestCarStore_AddDefaultsAvailable(t *testing.T) {
	stores := newTestStores(&fakeAPI{}, nil)
	ctx := context.Background()

	car := stores.Cars.Add(ctx, domain.Car{Name: "Nissan Leaf", PricePerDay: 6000, Available: false})
	assert.NotEmpty(t, car.ID)
	assert.True(t, car.Available)

	fetched := stores.Cars.GetByID(car.ID)
	require.NotNil(t, fetched)
	assert.Equal(t, "Nissan Leaf", fetched.Name)
}

func TestCarStore_UpdateUnknownID(t *testing.T) {
	stores := newTestStores(&fakeAPI{}, nil)
	_, err := stores.Cars.Update(context.Background(), domain.Car{ID: "missing"})
	assert.ErrorIs(t, err, ErrCarNotFound)
}

func TestCarStore_RemoveRejectedWhileReferenced(t *testing.T) {
	api := &fakeAPI{}
	stores := newTestStores(api, nil)
	ctx := context.Background()

	_, err := stores.Reservations.Add(ctx, reservationDraft(42, "C001"))
	require.NoError(t, err)

	err = stores.Cars.Remove(ctx, "C001")
	assert.ErrorIs(t, err, ErrCarReferenced)

	// Still present.
	assert.NotNil(t, stores.Cars.GetByID("C001"))
}

func TestCarStore_RemoveUnreferenced(t *testing.T) {
	stores := newTestStores(&fakeAPI{}, nil)
	ctx := context.Background()

	require.NoError(t, stores.Cars.Remove(ctx, "C003"))
	assert.Nil(t, stores.Cars.GetByID("C003"))
	assert.ErrorIs(t, stores.Cars.Remove(ctx, "C003"), ErrCarNotFound)
}

func TestCarStore_Archive(t *testing.T) {
	stores := newTestStores(&fakeAPI{}, nil)
	ctx := context.Background()

	require.NoError(t, stores.Cars.Archive(ctx, "C002"))
	car := stores.Cars.GetByID("C002")
	require.NotNil(t, car)
	assert.True(t, car.Archived)
	assert.False(t, car.Available)
	assert.Equal(t, domain.CarStatusArchived, car.WireStatus())
}

func TestCarStore_SetAvailabilityQueuesRemoteSync(t *testing.T) {
	api := &fakeAPI{}
	stores := newTestStores(api, nil)
	ctx := context.Background()

	require.NoError(t, stores.Cars.SetAvailability(ctx, "C001", false))

	// Local mutation is synchronous; the upstream write is queued.
	car := stores.Cars.GetByID("C001")
	require.NotNil(t, car)
	assert.False(t, car.Available)
	assert.True(t, stores.Cars.PendingSync("C001"))

	// Draining the queue acknowledges the write upstream.
	synced := stores.Syncer.Flush(ctx)
	assert.Equal(t, 1, synced)
	assert.False(t, stores.Cars.PendingSync("C001"))
	assert.Equal(t, 1, api.updateCarCalls)
}

func TestCarStore_SyncRetriesAfterUpstreamFailure(t *testing.T) {
	api := &fakeAPI{}
	api.updateCarFn = func(car *domain.Car) error {
		return errors.New("upstream down")
	}
	stores := newTestStores(api, nil)
	ctx := context.Background()

	require.NoError(t, stores.Cars.SetAvailability(ctx, "C001", false))
	assert.Equal(t, 0, stores.Syncer.Flush(ctx))
	assert.True(t, stores.Cars.PendingSync("C001"))

	// Upstream recovers; the pending entry reconciles on the next flush.
	api.mu.Lock()
	api.updateCarFn = nil
	api.mu.Unlock()
	assert.Equal(t, 1, stores.Syncer.Flush(ctx))
	assert.False(t, stores.Cars.PendingSync("C001"))
}

func TestCarStore_PersistenceRoundTrip(t *testing.T) {
	snaps := cache.NewMemorySnapshots()
	stores := newTestStores(&fakeAPI{}, snaps)
	ctx := context.Background()

	stores.Cars.Add(ctx, domain.Car{Name: "Reloadable", PricePerDay: 7000})
	expected := stores.Cars.List()

	reloaded := newTestStores(&fakeAPI{}, snaps)
	assert.Equal(t, expected, reloaded.Cars.List())
}
