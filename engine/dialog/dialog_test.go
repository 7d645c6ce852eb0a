package dialog

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceBool(t *testing.T) {
	t.Run("Should accept any capitalization of true", func(t *testing.T) {
		for _, raw := range []string{"true", "True", "TRUE", "tRuE"} {
			assert.True(t, CoerceBool(raw), "raw %q", raw)
		}
	})

	t.Run("Should map everything else to false", func(t *testing.T) {
		for _, raw := range []string{"false", "False", "yes", "1", "", " true"} {
			assert.False(t, CoerceBool(raw), "raw %q", raw)
		}
	})
}

func TestCoerceInt(t *testing.T) {
	t.Run("Should parse base-10 integers", func(t *testing.T) {
		n, err := CoerceInt("42")
		require.NoError(t, err)
		assert.Equal(t, 42, n)

		n, err = CoerceInt("-7")
		require.NoError(t, err)
		assert.Equal(t, -7, n)

		n, err = CoerceInt("0")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("Should fail on non-numeric input", func(t *testing.T) {
		for _, raw := range []string{"forty-two", "4.2", "", "0x10"} {
			_, err := CoerceInt(raw)
			assert.Error(t, err, "raw %q", raw)
		}
	})
}

func TestCoerceMultiChoice(t *testing.T) {
	choices := []string{"alpha", "beta", "gamma"}

	t.Run("Should keep only declared choices", func(t *testing.T) {
		got := CoerceMultiChoice("alpha;unknown;gamma", choices)
		assert.Equal(t, []string{"alpha", "gamma"}, got)
	})

	t.Run("Should collapse duplicates", func(t *testing.T) {
		got := CoerceMultiChoice("beta;beta;beta", choices)
		assert.Equal(t, []string{"beta"}, got)
	})

	t.Run("Should return empty result when nothing survives", func(t *testing.T) {
		got := CoerceMultiChoice("delta;epsilon", choices)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Should not trim whitespace around members", func(t *testing.T) {
		got := CoerceMultiChoice("alpha; beta", choices)
		assert.Equal(t, []string{"alpha"}, got)
	})
}

func TestCoerceChoice(t *testing.T) {
	choices := []string{"red", "green"}

	t.Run("Should keep declared choice", func(t *testing.T) {
		assert.Equal(t, "red", CoerceChoice("red", choices))
	})

	t.Run("Should silently reject out-of-set answer", func(t *testing.T) {
		assert.Nil(t, CoerceChoice("blue", choices))
	})

	t.Run("Should be case sensitive", func(t *testing.T) {
		assert.Nil(t, CoerceChoice("Red", choices))
	})
}

func TestComponent_Coerce(t *testing.T) {
	t.Run("Should dispatch on declared type", func(t *testing.T) {
		boolC := &Component{Key: "confirm", Type: ValueBool}
		v, err := boolC.Coerce("True")
		require.NoError(t, err)
		assert.Equal(t, true, v)

		intC := &Component{Key: "count", Type: ValueInt}
		v, err = intC.Coerce("3")
		require.NoError(t, err)
		assert.Equal(t, 3, v)

		strC := &Component{Key: "name", Type: ValueString}
		v, err = strC.Coerce("anything goes")
		require.NoError(t, err)
		assert.Equal(t, "anything goes", v)
	})

	t.Run("Should wrap integer parse failures in ErrCoerce", func(t *testing.T) {
		c := &Component{Key: "count", Type: ValueInt}
		_, err := c.Coerce("many")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCoerce))
		var numErr *strconv.NumError
		assert.True(t, errors.As(err, &numErr))
		assert.Contains(t, err.Error(), "count")
		assert.Contains(t, err.Error(), "many")
	})

	t.Run("Should treat unknown type as plain string", func(t *testing.T) {
		c := &Component{Key: "odd", Type: ValueType("mystery")}
		v, err := c.Coerce("raw")
		require.NoError(t, err)
		assert.Equal(t, "raw", v)
	})
}

func TestValueType(t *testing.T) {
	t.Run("Should validate declared variants only", func(t *testing.T) {
		for _, v := range []ValueType{ValueBool, ValueInt, ValueMultiChoice, ValueChoice, ValueString} {
			assert.True(t, v.IsValid(), "type %s", v)
		}
		assert.False(t, ValueType("tuple").IsValid())
		assert.False(t, ValueType("").IsValid())
	})
}

func TestValidate(t *testing.T) {
	t.Run("Should accept a well-formed dialog", func(t *testing.T) {
		d := &Dialog{
			Scope: "upgrade",
			Title: "Upgrade confirmation",
			Components: []*Component{
				{Key: "confirm", Type: ValueBool},
				{Key: "mode", Type: ValueChoice, Choices: []string{"fast", "safe"}},
			},
		}
		assert.NoError(t, d.Validate())
	})

	t.Run("Should reject dialog without scope", func(t *testing.T) {
		d := &Dialog{Components: []*Component{{Key: "confirm", Type: ValueBool}}}
		assert.Error(t, d.Validate())
	})

	t.Run("Should reject component without key", func(t *testing.T) {
		d := &Dialog{Scope: "s", Components: []*Component{{Type: ValueBool}}}
		assert.Error(t, d.Validate())
	})

	t.Run("Should reject unknown value type", func(t *testing.T) {
		c := &Component{Key: "k", Type: ValueType("tuple")}
		assert.Error(t, c.Validate())
	})

	t.Run("Should require choices for restricted types", func(t *testing.T) {
		assert.Error(t, (&Component{Key: "k", Type: ValueChoice}).Validate())
		assert.Error(t, (&Component{Key: "k", Type: ValueMultiChoice}).Validate())
		assert.NoError(t, (&Component{Key: "k", Type: ValueString}).Validate())
	})
}
