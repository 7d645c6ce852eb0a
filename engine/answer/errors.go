package answer

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks a malformed answer file. The wrapped message carries
	// the path and line that could not be understood.
	ErrParse = errors.New("answer file parse failed")

	// ErrStoreClosed is returned by store operations after Close.
	ErrStoreClosed = errors.New("answer store is closed")
)

// NewParseError builds an ErrParse with file position context.
func NewParseError(path string, line int, msg string) error {
	return fmt.Errorf("%w: %s:%d: %s", ErrParse, path, line, msg)
}
