package positions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdannyboy/crr/models"
)

func TestParseStyle(t *testing.T) {
	for label, want := range map[string]Style{
		"european": European,
		" EU ":     European,
		"American": American,
		"us":       American,
		"barrier":  Barrier,
	} {
		got, err := ParseStyle(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}

	_, err := ParseStyle("bermudan")
	assert.ErrorIs(t, err, ErrUnknownStyle)
	assert.Contains(t, err.Error(), `"bermudan"`)

	assert.Equal(t, "american", American.String())
	assert.Equal(t, "unknown", Style(9).String())
}

func TestParseOptionType(t *testing.T) {
	assert.Equal(t, Call, ParseOptionType("call"))
	assert.Equal(t, Call, ParseOptionType("CALL"))
	assert.Equal(t, Put, ParseOptionType("put"))
	assert.Equal(t, Put, ParseOptionType("anything else"))
	assert.Equal(t, "call", Call.String())
	assert.Equal(t, "put", Put.String())
}

func TestNewPricer(t *testing.T) {
	m := models.NewBinomialTreeModel(1.1, 0.05, 1, 2)
	spec := ContractSpec{
		Spot:        100,
		Strike:      100,
		Barrier:     105,
		Maturity:    1,
		OptionType:  Put,
		BarrierType: BarrierType{Direction: Up, Knock: In},
	}

	t.Run("european", func(t *testing.T) {
		spec := spec
		spec.Style = European
		p, err := NewPricer(m, spec)
		require.NoError(t, err)
		assert.IsType(t, &EuropeanOption{}, p)
		assert.InDelta(t, 2.526570087396231, p.Price(), 1e-9)
	})

	t.Run("american", func(t *testing.T) {
		spec := spec
		spec.Style = American
		p, err := NewPricer(m, spec)
		require.NoError(t, err)
		assert.IsType(t, &AmericanOption{}, p)
		assert.InDelta(t, 3.4686144395793326, p.Price(), 1e-9)
	})

	t.Run("barrier", func(t *testing.T) {
		spec := spec
		spec.Style = Barrier
		p, err := NewPricer(m, spec)
		require.NoError(t, err)

		b, ok := p.(*BarrierOption)
		require.True(t, ok)
		assert.False(t, b.IsCall)
		assert.Equal(t, 105.0, b.H)
		assert.Equal(t, "up-and-in", b.Type.String())
	})

	t.Run("maturity mismatch", func(t *testing.T) {
		spec := spec
		spec.Maturity = 2
		p, err := NewPricer(m, spec)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrMaturityMismatch)
	})

	t.Run("unknown style", func(t *testing.T) {
		spec := spec
		spec.Style = Style(7)
		_, err := NewPricer(m, spec)
		assert.ErrorIs(t, err, ErrUnknownStyle)
	})
}
