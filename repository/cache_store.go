package repository

import (
	"context"
	"sync"
	"time"

	"quickcart-emporium/logger"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCacheStore keeps cached responses in process memory
type MemoryCacheStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCacheStore creates an empty MemoryCacheStore
func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Ensure MemoryCacheStore implements CacheStoreInterface
var _ CacheStoreInterface = (*MemoryCacheStore)(nil)

func (s *MemoryCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		if current, ok := s.entries[key]; ok && !s.now().Before(current.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.payload, true, nil
}

func (s *MemoryCacheStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{payload: payload, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryCacheStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Purge drops every expired entry and returns how many were removed
func (s *MemoryCacheStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Sweep purges expired entries every interval until ctx is done.
// It blocks, so run it in its own goroutine.
func (s *MemoryCacheStore) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Purge(); removed > 0 {
				logger.Log.Debugf("🧹 Purged %d expired cache entries", removed)
			}
		}
	}
}

// Len returns the number of stored entries, expired ones included
func (s *MemoryCacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
