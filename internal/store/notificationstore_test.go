package store

import (
	"context"
	"testing"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStore_AddPrependsNewestFirst(t *testing.T) {
	stores := newTestStores(&fakeAPI{}, nil)
	notes := stores.Notifications
	ctx := context.Background()

	first := notes.Add(ctx, domain.Notification{Type: domain.NotificationTypeReservation, Title: "First"})
	second := notes.Add(ctx, domain.Notification{Type: domain.NotificationTypeBooking, Title: "Second"})

	feed := notes.List()
	require.GreaterOrEqual(t, len(feed), 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
	assert.False(t, feed[0].Read)
	assert.NotEmpty(t, feed[0].ID)
	assert.False(t, feed[0].Timestamp.IsZero())
}

func TestNotificationStore_UnreadCount(t *testing.T) {
	snaps := cache.NewMemorySnapshots()
	ctx := context.Background()
	notes := NewNotificationStore(ctx, snaps)
	baseline := notes.UnreadCount()

	a := notes.Add(ctx, domain.Notification{Title: "A"})
	notes.Add(ctx, domain.Notification{Title: "B"})
	assert.Equal(t, baseline+2, notes.UnreadCount())

	assert.True(t, notes.MarkRead(ctx, a.ID))
	assert.Equal(t, baseline+1, notes.UnreadCount())

	notes.MarkAllRead(ctx)
	assert.Equal(t, 0, notes.UnreadCount())
}

func TestNotificationStore_MarkReadMiss(t *testing.T) {
	notes := NewNotificationStore(context.Background(), cache.NewMemorySnapshots())
	assert.False(t, notes.MarkRead(context.Background(), "nope"))
	assert.False(t, notes.Remove(context.Background(), "nope"))
}

func TestNotificationStore_Remove(t *testing.T) {
	ctx := context.Background()
	notes := NewNotificationStore(ctx, cache.NewMemorySnapshots())
	n := notes.Add(ctx, domain.Notification{Title: "Gone"})

	before := len(notes.List())
	assert.True(t, notes.Remove(ctx, n.ID))
	assert.Len(t, notes.List(), before-1)
}

func TestNotificationStore_PersistenceRoundTrip(t *testing.T) {
	snaps := cache.NewMemorySnapshots()
	ctx := context.Background()

	notes := NewNotificationStore(ctx, snaps)
	notes.Add(ctx, domain.Notification{Title: "Survives reload", Data: map[string]string{"carId": "C001"}})
	expected := notes.List()

	reloaded := NewNotificationStore(ctx, snaps)
	assert.Equal(t, expected, reloaded.List())
}

func TestNotificationStore_CorruptSnapshotFallsBackToSeed(t *testing.T) {
	snaps := cache.NewMemorySnapshots()
	ctx := context.Background()
	require.NoError(t, snaps.Save(ctx, cache.KeyNotifications, []byte("{not json")))

	notes := NewNotificationStore(ctx, snaps)
	assert.Equal(t, cache.SeedNotifications(), notes.List())
}
