package cache

import (
	"context"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

type memoryEntry struct {
	expiresAt time.Time
	response  *CachedResponse
}

func (e memoryEntry) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// InMemoryIdempotencyStore keeps idempotency state in process memory.
// State is not shared between instances.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	processed map[string]memoryEntry
	responses map[string]memoryEntry
	locks     map[string]memoryEntry
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	now       func() time.Time
}

// NewInMemoryIdempotencyStore creates the store and starts its expiry sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		processed: make(map[string]memoryEntry),
		responses: make(map[string]memoryEntry),
		locks:     make(map[string]memoryEntry),
		stop:      make(chan struct{}),
		now:       time.Now,
	}
	s.wg.Add(1)
	go s.sweepLoop()
	return s
}

// MarkProcessed records id and reports whether it was new
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claim(s.processed, id, ttl), nil
}

// IsProcessed reports whether id is recorded and unexpired
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.processed[id]
	return ok && e.live(s.now()), nil
}

// Lookup returns the response stored under key, or ErrNotCached
func (s *InMemoryIdempotencyStore) Lookup(_ context.Context, key string) (*CachedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.responses[key]
	if !ok || !e.live(s.now()) {
		return nil, ErrNotCached
	}
	copied := *e.response
	copied.Body = append([]byte(nil), e.response.Body...)
	return &copied, nil
}

// Lock claims key for an in-flight request
func (s *InMemoryIdempotencyStore) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claim(s.locks, key, ttl), nil
}

// Store saves the response and releases the lock
func (s *InMemoryIdempotencyStore) Store(_ context.Context, key string, resp *CachedResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *resp
	copied.Body = append([]byte(nil), resp.Body...)
	s.responses[key] = memoryEntry{expiresAt: s.now().Add(ttl), response: &copied}
	delete(s.locks, key)
	return nil
}

// Unlock releases a claim without storing anything
func (s *InMemoryIdempotencyStore) Unlock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of tracked keys across all namespaces
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed) + len(s.responses) + len(s.locks)
}

// claim must be called with mu held
func (s *InMemoryIdempotencyStore) claim(m map[string]memoryEntry, key string, ttl time.Duration) bool {
	now := s.now()
	if e, ok := m[key]; ok && e.live(now) {
		return false
	}
	m[key] = memoryEntry{expiresAt: now.Add(ttl)}
	return true
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, m := range []map[string]memoryEntry{s.processed, s.responses, s.locks} {
		for k, e := range m {
			if !e.live(now) {
				delete(m, k)
			}
		}
	}
}

var _ IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
