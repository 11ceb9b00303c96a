package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/logger"
)

// NotificationStore is the append-only feed of user-facing events. Purely
// local; persisted to the durable cache, never synchronized upstream.
type NotificationStore struct {
	mu    sync.RWMutex
	snaps cache.Snapshots
	items []domain.Notification // newest-first
	now   func() time.Time
}

// NewNotificationStore loads the feed from the durable cache; missing or
// corrupt data falls back to the built-in seed feed.
func NewNotificationStore(ctx context.Context, snaps cache.Snapshots) *NotificationStore {
	s := &NotificationStore{
		snaps: snaps,
		now:   time.Now,
	}

	payload, err := snaps.Load(ctx, cache.KeyNotifications)
	if err == nil {
		if err := json.Unmarshal(payload, &s.items); err == nil {
			return s
		}
		logger.Warn("Corrupt notifications snapshot, falling back to seed data", "error", err)
	}
	s.items = cache.SeedNotifications()
	s.persist(ctx)
	return s
}

func (s *NotificationStore) persist(ctx context.Context) {
	payload, err := json.Marshal(s.items)
	if err != nil {
		logger.Error("Failed to serialize notifications", "error", err)
		return
	}
	if err := s.snaps.Save(ctx, cache.KeyNotifications, payload); err != nil {
		logger.Error("Failed to persist notifications snapshot", "error", err)
	}
}

// Add assigns id, timestamp and read=false, prepends the event to the feed
// and persists it.
func (s *NotificationStore) Add(ctx context.Context, event domain.Notification) domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	event.Read = false
	s.items = append([]domain.Notification{event}, s.items...)
	s.persist(ctx)
	return event
}

// List returns the feed snapshot, newest first.
func (s *NotificationStore) List() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// MarkRead flips a single notification to read. Returns false on a miss.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			s.persist(ctx)
			return true
		}
	}
	return false
}

// MarkAllRead flips every notification to read.
func (s *NotificationStore) MarkAllRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.persist(ctx)
}

// Remove deletes a notification from the feed. Returns false on a miss.
func (s *NotificationStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// UnreadCount is the number of unread entries in the feed.
func (s *NotificationStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for i := range s.items {
		if !s.items[i].Read {
			count++
		}
	}
	return count
}
