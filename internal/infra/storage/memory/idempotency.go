package memory

import (
	"context"
	"sync"
	"time"

	"rentdom/internal/app/middleware"
)

// IdempotencyStore keeps command results in memory. Records older than TTL are ignored
// and dropped on the next write.
type IdempotencyStore struct {
	TTL time.Duration
	Now func() time.Time

	mu    sync.RWMutex
	items map[string]middleware.IdempotencyRecord
}

// NewIdempotencyStore ages records on clock. A nil clock means the wall clock.
func NewIdempotencyStore(ttl time.Duration, clock func() time.Time) *IdempotencyStore {
	return &IdempotencyStore{TTL: ttl, Now: clock, items: make(map[string]middleware.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[key]
	if !ok || s.expired(rec) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, old := range s.items {
		if s.expired(old) {
			delete(s.items, k)
		}
	}
	s.items[rec.Key] = rec
	return nil
}

func (s *IdempotencyStore) expired(rec middleware.IdempotencyRecord) bool {
	if s.TTL <= 0 {
		return false
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return now.Sub(rec.OccurredAt) >= s.TTL
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
