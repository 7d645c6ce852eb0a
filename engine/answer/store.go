package answer

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mohae/deepcopy"
)

// Entry is the key to value mapping stored under one scope. Values are raw
// strings until translation runs; afterwards they are bool, int, []string
// (multi-choice), a validated string, or nil for an answer that was rejected
// or never given.
type Entry map[string]any

// Decode maps the entry onto target, a pointer to a struct with
// `mapstructure` tags. Input is weakly typed, so an entry that was never
// translated still decodes into typed fields.
func (e Entry) Decode(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]any(e))
}

// Store is the shared answer mapping. Implementations must be safe for
// concurrent use and may be backed by cross-process coordinators, so the
// contract is deliberately narrow:
//
//   - Get returns a detached copy. Mutating it changes nothing anyone else
//     can see.
//   - Put replaces the scope's entire entry. There is no per-key mutation;
//     updating one answer means fetch, modify, put. Concurrent writers to
//     the same scope race and the last replacement wins.
//   - A scope that was never stored yields (nil, nil), not an error.
type Store interface {
	Put(ctx context.Context, scope string, entry Entry) error
	Get(ctx context.Context, scope string) (Entry, error)

	// Scopes lists the stored scope names in lexical order.
	Scopes(ctx context.Context) ([]string, error)

	// Close releases underlying resources. Operations after Close fail with
	// ErrStoreClosed.
	Close() error
}

// copyEntry deep-copies an entry so stored state never aliases caller state.
// A nil entry normalizes to an empty one.
func copyEntry(entry Entry) (Entry, error) {
	if entry == nil {
		return Entry{}, nil
	}
	copied, ok := deepcopy.Copy(entry).(Entry)
	if !ok {
		return nil, fmt.Errorf("deep copy failed for entry type %T", entry)
	}
	return copied, nil
}
