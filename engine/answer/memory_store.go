package answer

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store. It is safe for concurrent use and is
// the default backing when no cross-process coordinator is supplied. Entries
// are deep-copied in both directions, so callers can never mutate stored
// state through a fetched entry.
type MemoryStore struct {
	mu     sync.RWMutex
	scopes map[string]Entry
	closed bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: make(map[string]Entry)}
}

// Put replaces the scope's whole entry.
func (s *MemoryStore) Put(ctx context.Context, scope string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	cp, err := copyEntry(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.scopes[scope] = cp
	return nil
}

// Get returns a detached copy of the scope's entry, or (nil, nil) when the
// scope was never stored.
func (s *MemoryStore) Get(ctx context.Context, scope string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled: %w", err)
	}
	s.mu.RLock()
	entry, ok := s.scopes[scope]
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrStoreClosed
	}
	if !ok {
		return nil, nil
	}
	return copyEntry(entry)
}

// Scopes lists stored scope names in lexical order.
func (s *MemoryStore) Scopes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	names := make([]string, 0, len(s.scopes))
	for scope := range s.scopes {
		names = append(names, scope)
	}
	slices.Sort(names)
	return names, nil
}

// Close marks the store closed. Closing twice is a no-op.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.scopes = make(map[string]Entry)
	return nil
}
