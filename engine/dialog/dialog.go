package dialog

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Dialog describes one interactive question group. Scope is the storage
// namespace its answers live under; Title and Reason document the question
// for operators reading a generated answer file.
type Dialog struct {
	Scope      string       `json:"scope"      yaml:"scope"      validate:"required"`
	Title      string       `json:"title"      yaml:"title"`
	Reason     string       `json:"reason"     yaml:"reason"`
	Components []*Component `json:"components" yaml:"components"`
}

// Component is a single question within a dialog. Default and Choices feed
// the generated answer-file template; Value is the runtime slot translation
// fills with the typed answer (nil when unanswered).
type Component struct {
	Key         string    `json:"key"               yaml:"key"               validate:"required"`
	Label       string    `json:"label"             yaml:"label"`
	Description string    `json:"description"       yaml:"description"`
	Type        ValueType `json:"type"              yaml:"type"              validate:"required,oneof=bool int multichoice choice string"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	Choices     []string  `json:"choices,omitempty" yaml:"choices,omitempty"`
	Value       any       `json:"-"                 yaml:"-"`
}

// Coerce converts a raw string answer according to the component's declared
// type. Choice rejections are silent (nil result, no error); integer parse
// failures are returned wrapped in ErrCoerce. Unknown types fall back to the
// verbatim string.
func (c *Component) Coerce(raw string) (any, error) {
	switch c.Type {
	case ValueBool:
		return CoerceBool(raw), nil
	case ValueInt:
		n, err := CoerceInt(raw)
		if err != nil {
			return nil, NewCoerceError(c.Key, raw, err)
		}
		return n, nil
	case ValueMultiChoice:
		return CoerceMultiChoice(raw, c.Choices), nil
	case ValueChoice:
		return CoerceChoice(raw, c.Choices), nil
	default:
		return raw, nil
	}
}

// HasChoices reports whether the component declares a restricted choice set.
func (c *Component) HasChoices() bool {
	return len(c.Choices) > 0
}

var validate = validator.New()

func (d *Dialog) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid dialog %q: %w", d.Scope, err)
	}
	for _, c := range d.Components {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid dialog %q: %w", d.Scope, err)
		}
	}
	return nil
}

func (c *Component) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid component %q: %w", c.Key, err)
	}
	if (c.Type == ValueChoice || c.Type == ValueMultiChoice) && !c.HasChoices() {
		return fmt.Errorf("invalid component %q: type %s requires choices", c.Key, c.Type)
	}
	return nil
}
