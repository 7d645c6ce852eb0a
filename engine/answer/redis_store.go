package answer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/preseedhq/preseed/engine/infra/cache"
)

// DefaultKeyPrefix namespaces answer scopes in the shared coordinator.
const DefaultKeyPrefix = "preseed:answers"

// RedisStore is a Store backed by a shared Redis coordinator. Every scope
// maps to one key holding the whole entry, so Put is naturally a whole-entry
// replacement and every process connected to the same coordinator observes
// the same answers. The store does not own the client; closing the store
// only fences further use of this handle.
type RedisStore struct {
	client cache.RedisInterface
	prefix string
	closed atomic.Bool
}

type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix, letting several answer spaces
// share one coordinator.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore constructs a RedisStore over an established client.
func NewRedisStore(client cache.RedisInterface, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) keyFor(scope string) string {
	return s.prefix + ":scope:" + scope
}

func (s *RedisStore) scopeFrom(key string) string {
	return strings.TrimPrefix(key, s.prefix+":scope:")
}

// Put replaces the scope's whole entry in the coordinator.
func (s *RedisStore) Put(ctx context.Context, scope string, entry Entry) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if entry == nil {
		entry = Entry{}
	}
	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("encoding entry for scope %q: %w", scope, err)
	}
	if err := s.client.Set(ctx, s.keyFor(scope), data, 0).Err(); err != nil {
		return fmt.Errorf("storing scope %q: %w", scope, err)
	}
	return nil
}

// Get returns a detached copy of the scope's entry, or (nil, nil) when the
// scope was never stored.
func (s *RedisStore) Get(ctx context.Context, scope string) (Entry, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	data, err := s.client.Get(ctx, s.keyFor(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching scope %q: %w", scope, err)
	}
	entry, err := decodeEntry(data)
	if err != nil {
		return nil, fmt.Errorf("scope %q: %w", scope, err)
	}
	return entry, nil
}

// Scopes lists stored scope names in lexical order.
func (s *RedisStore) Scopes(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	match := s.prefix + ":scope:*"
	seen := make(map[string]struct{})
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning scopes: %w", err)
		}
		for _, key := range keys {
			seen[s.scopeFrom(key)] = struct{}{}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	names := make([]string, 0, len(seen))
	for scope := range seen {
		names = append(names, scope)
	}
	slices.Sort(names)
	return names, nil
}

// Close fences this handle. The underlying client stays open for its owner.
func (s *RedisStore) Close() error {
	s.closed.Store(true)
	return nil
}
