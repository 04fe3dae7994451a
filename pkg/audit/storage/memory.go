package storage

import (
	"context"
	"sort"
	"sync"

	"oecs-hq/lusaka/pkg/audit"
)

// MemoryStorage implements audit.Storage using an in-memory slice.
// Intended for tests and ephemeral deployments.
type MemoryStorage struct {
	entries []*audit.Entry
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store persists one audit entry.
func (s *MemoryStorage) Store(ctx context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to keep stored entries immutable from the caller's view.
	entryCopy := *entry
	s.entries = append(s.entries, &entryCopy)

	return nil
}

// Query retrieves entries matching the filters, ordered by session and sequence.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.Entry
	for _, entry := range s.entries {
		if matchesQuery(entry, query) {
			entryCopy := *entry
			results = append(results, &entryCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].SessionID != results[j].SessionID {
			return results[i].SessionID < results[j].SessionID
		}
		return results[i].Sequence < results[j].Sequence
	})

	if query != nil {
		start := query.Offset
		if start > len(results) {
			return []*audit.Entry{}, nil
		}
		results = results[start:]
		if query.Limit > 0 && query.Limit < len(results) {
			results = results[:query.Limit]
		}
	}

	return results, nil
}

// Count returns the number of entries matching the filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, entry := range s.entries {
		if matchesQuery(entry, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes entries matching the filters and returns how many were removed.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var deleted int64
	for _, entry := range s.entries {
		if matchesQuery(entry, query) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept

	return deleted, nil
}

// Close releases no resources for the memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}

// matchesQuery checks whether an entry satisfies all query filters.
func matchesQuery(entry *audit.Entry, query *audit.Query) bool {
	if query == nil {
		return true
	}
	if query.SessionID != "" && entry.SessionID != query.SessionID {
		return false
	}
	if query.Kind != "" && entry.Kind != query.Kind {
		return false
	}
	if query.Decision != "" && entry.Decision != query.Decision {
		return false
	}
	if query.After != nil && entry.Timestamp.Before(*query.After) {
		return false
	}
	if query.Before != nil && !entry.Timestamp.Before(*query.Before) {
		return false
	}
	return true
}
