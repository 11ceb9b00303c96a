package cache

import (
	"context"
	"errors"
)

// Snapshot keys, one per store. Each key holds the whole collection as a
// JSON-serialized array.
const (
	KeyCars          = "cars"
	KeyReservations  = "reservations"
	KeyBookings      = "bookings"
	KeyNotifications = "notifications"
)

// ErrNotFound is returned by Load when no snapshot exists for the key.
var ErrNotFound = errors.New("snapshot not found")

// Snapshots is the durable local cache: whole collections serialized under
// a fixed key, written on every mutation and read once at store startup.
type Snapshots interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
