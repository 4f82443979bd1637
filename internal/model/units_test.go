package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixedUnit(t *testing.T) {
	t.Run("Unit converts to a plain prefixed unit", func(t *testing.T) {
		assert.Equal(t, PrefixedUnit{Base: Joule, Prefix: Plain}, Joule.PrefixedUnit())
	})

	t.Run("Equality takes the prefix into account", func(t *testing.T) {
		assert.Equal(t, Joule.WithPrefix(Milli), Joule.WithPrefix(Milli))
		assert.NotEqual(t, Joule.WithPrefix(Milli), Joule.WithPrefix(Micro))
		assert.NotEqual(t, Joule.PrefixedUnit(), Watt.PrefixedUnit())
	})

	t.Run("String renders prefix and symbol", func(t *testing.T) {
		assert.Equal(t, "mJ", Joule.WithPrefix(Milli).String())
		assert.Equal(t, "W", Watt.PrefixedUnit().String())
		assert.Equal(t, "1", Unity.PrefixedUnit().String())
		assert.Equal(t, "e-2W", Watt.WithPrefix(Prefix(-2)).String())
	})

	t.Run("Scale matches the power of ten", func(t *testing.T) {
		assert.InDelta(t, 1e-6, Micro.Scale(), 1e-12)
		assert.Equal(t, 1000.0, Kilo.Scale())
		assert.Equal(t, 1.0, Plain.Scale())
	})
}

func TestParseUnit(t *testing.T) {
	cases := []struct {
		input    string
		expected PrefixedUnit
	}{
		{"uJ", Joule.WithPrefix(Micro)},
		{"W", Watt.PrefixedUnit()},
		{"kHz", Hertz.WithPrefix(Kilo)},
		{"ms", Second.WithPrefix(Milli)},
		{"1", Unity.PrefixedUnit()},
		{"Cel", DegreeCelsius.PrefixedUnit()},
		{" GB ", Byte.WithPrefix(Giga)},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			u, err := ParseUnit(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, u)
		})
	}

	t.Run("Rejects unknown units", func(t *testing.T) {
		_, err := ParseUnit("furlong")
		assert.Error(t, err)

		_, err = ParseUnit("")
		assert.Error(t, err)
	})
}

func TestElementNames(t *testing.T) {
	t.Run("Compare orders by plugin then name", func(t *testing.T) {
		a := ElementName{Plugin: "a", Name: "z"}
		b := ElementName{Plugin: "b", Name: "a"}
		c := ElementName{Plugin: "b", Name: "b"}

		assert.Negative(t, a.Compare(b))
		assert.Negative(t, b.Compare(c))
		assert.Zero(t, c.Compare(c))
		assert.Positive(t, c.Compare(a))
	})

	t.Run("SortElements sorts lexicographically", func(t *testing.T) {
		names := []SourceName{
			NewSourceName("pluginB", "src2"),
			NewSourceName("pluginA", "src2"),
			NewSourceName("pluginA", "src1"),
		}

		SortElements(names)

		assert.Equal(t, []SourceName{
			NewSourceName("pluginA", "src1"),
			NewSourceName("pluginA", "src2"),
			NewSourceName("pluginB", "src2"),
		}, names)
	})

	t.Run("Names of different kinds are distinct types", func(t *testing.T) {
		out := NewOutputName("p", "x")
		tr := NewTransformName("p", "x")

		assert.Equal(t, out.ElementName, tr.ElementName)
		assert.Equal(t, "p/x", out.String())
	})
}
