package store

import (
	"context"
	"sync"
	"time"

	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/logger"
	"carrental-storefront/internal/remote"
)

type syncEntry struct {
	car      domain.Car
	attempts int
}

// AvailabilitySyncer reconciles local availability flips with the upstream
// API. SetAvailability applies the local mutation first; the remote write
// is queued here and retried with backoff instead of being fired and
// forgotten, and every queued car is reported as sync-pending until the
// upstream has acknowledged it.
type AvailabilitySyncer struct {
	api        remote.API
	maxRetries int
	backoff    time.Duration

	mu      sync.Mutex
	pending map[string]*syncEntry

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewAvailabilitySyncer(api remote.API, maxRetries int, backoff time.Duration) *AvailabilitySyncer {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &AvailabilitySyncer{
		api:        api,
		maxRetries: maxRetries,
		backoff:    backoff,
		pending:    make(map[string]*syncEntry),
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the background worker.
func (s *AvailabilitySyncer) Start() {
	go s.run()
}

// Stop shuts the worker down and waits for it to drain the current pass.
func (s *AvailabilitySyncer) Stop() {
	close(s.stop)
	<-s.done
}

// Enqueue schedules the car's current state for upstream reconciliation.
// A newer enqueue for the same car supersedes the queued one.
func (s *AvailabilitySyncer) Enqueue(car domain.Car) {
	s.mu.Lock()
	s.pending[car.ID] = &syncEntry{car: car}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether the car still has an unacknowledged upstream write.
func (s *AvailabilitySyncer) Pending(carID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[carID]
	return ok
}

// PendingCount returns the number of cars awaiting reconciliation.
func (s *AvailabilitySyncer) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush attempts every pending reconciliation once, synchronously,
// including entries whose worker retry budget is exhausted. Used by the
// scheduled reconcile job; entries that fail stay queued.
func (s *AvailabilitySyncer) Flush(ctx context.Context) int {
	synced := 0
	for _, entry := range s.snapshotPending(false) {
		if err := s.api.UpdateCar(ctx, &entry.car); err != nil {
			s.recordFailure(entry, err)
			continue
		}
		s.acknowledge(entry)
		synced++
	}
	return synced
}

func (s *AvailabilitySyncer) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
		}
		for s.processOnce() {
			select {
			case <-time.After(s.backoff):
			case <-s.stop:
				return
			}
		}
	}
}

// processOnce attempts each retryable pending entry once and reports
// whether retryable work remains. Entries that exhaust their attempts stay
// pending for the periodic flush job.
func (s *AvailabilitySyncer) processOnce() bool {
	for _, entry := range s.snapshotPending(true) {
		if err := s.api.UpdateCar(context.Background(), &entry.car); err != nil {
			s.recordFailure(entry, err)
			continue
		}
		s.acknowledge(entry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.pending {
		if entry.attempts < s.maxRetries {
			return true
		}
	}
	return false
}

// snapshotPending copies the queue; the map entries stay until
// acknowledged. With retryableOnly set, entries out of attempts are
// skipped.
func (s *AvailabilitySyncer) snapshotPending(retryableOnly bool) []*syncEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*syncEntry, 0, len(s.pending))
	for _, entry := range s.pending {
		if retryableOnly && entry.attempts >= s.maxRetries {
			continue
		}
		out = append(out, &syncEntry{car: entry.car, attempts: entry.attempts})
	}
	return out
}

// acknowledge clears the entry unless a newer flip was enqueued meanwhile.
func (s *AvailabilitySyncer) acknowledge(attempted *syncEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.pending[attempted.car.ID]
	if ok && current.car.Available == attempted.car.Available {
		delete(s.pending, attempted.car.ID)
	}
}

func (s *AvailabilitySyncer) recordFailure(attempted *syncEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.pending[attempted.car.ID]
	if !ok {
		return
	}
	current.attempts++
	logger.Warn("Availability sync failed, will retry",
		"car_id", attempted.car.ID,
		"available", attempted.car.Available,
		"attempts", current.attempts,
		"error", err)
}
