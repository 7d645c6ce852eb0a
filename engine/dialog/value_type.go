package dialog

import (
	"slices"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------
// Value Types
// -----------------------------------------------------------------------------

// ValueType enumerates the answer types a component can declare. The set is
// closed: translation dispatches on it exhaustively and Validate rejects
// anything else.
type ValueType string

const (
	// ValueBool coerces with a case-insensitive "true" test; anything else
	// becomes false.
	ValueBool ValueType = "bool"
	// ValueInt coerces with a strict base-10 parse; failures are reported.
	ValueInt ValueType = "int"
	// ValueMultiChoice splits the raw answer on ";" and keeps only declared
	// choices.
	ValueMultiChoice ValueType = "multichoice"
	// ValueChoice keeps the raw answer only when it is a declared choice,
	// otherwise the answer becomes nil.
	ValueChoice ValueType = "choice"
	// ValueString keeps the raw answer verbatim.
	ValueString ValueType = "string"
)

func (v ValueType) String() string {
	return string(v)
}

func (v ValueType) IsValid() bool {
	switch v {
	case ValueBool, ValueInt, ValueMultiChoice, ValueChoice, ValueString:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Coercion
// -----------------------------------------------------------------------------

// CoerceBool maps any capitalization of "true" to true and every other input,
// including the empty string, to false.
func CoerceBool(raw string) bool {
	return strings.ToLower(raw) == "true"
}

// CoerceInt parses raw as a base-10 integer.
func CoerceInt(raw string) (int, error) {
	return strconv.Atoi(raw)
}

// CoerceMultiChoice splits raw on ";" and intersects the pieces with the
// declared choices. Unknown members are dropped silently, duplicates
// collapse, and the result follows the declared choice order. The result may
// be empty; it is never nil.
func CoerceMultiChoice(raw string, choices []string) []string {
	parts := strings.Split(raw, ";")
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		seen[part] = struct{}{}
	}
	out := make([]string, 0, len(choices))
	for _, choice := range choices {
		if _, ok := seen[choice]; ok {
			out = append(out, choice)
		}
	}
	return out
}

// CoerceChoice returns raw when it is a declared choice and nil otherwise.
// The rejection is silent: an out-of-set answer means "no answer".
func CoerceChoice(raw string, choices []string) any {
	if slices.Contains(choices, raw) {
		return raw
	}
	return nil
}
