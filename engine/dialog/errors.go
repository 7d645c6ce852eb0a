package dialog

import (
	"errors"
	"fmt"
)

// ErrCoerce marks a raw answer that could not be converted to its component's
// declared type.
var ErrCoerce = errors.New("answer coercion failed")

// NewCoerceError wraps a conversion failure with the component key and the
// offending raw value.
func NewCoerceError(key, raw string, err error) error {
	return fmt.Errorf("%w: key %q value %q: %w", ErrCoerce, key, raw, err)
}
