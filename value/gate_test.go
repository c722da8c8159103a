package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMappingMap(t *testing.T) {
	m := ValueMapping{
		From: ValueBounds{Low: 4.0, High: 20.0},
		To:   ValueBounds{Low: 0.0, High: 100.0},
	}
	assert.Equal(t, 0.0, m.Map(4.0))
	assert.Equal(t, 50.0, m.Map(12.0))
	assert.Equal(t, 100.0, m.Map(20.0))
}

func TestCroppingApply(t *testing.T) {
	lo, hi := 0.0, 100.0
	c := Cropping{Low: &lo, High: &hi}
	assert.Equal(t, 0.0, c.Apply(-5))
	assert.Equal(t, 100.0, c.Apply(150))
	assert.Equal(t, 42.0, c.Apply(42))
}

func TestApplyGateCropsThenMaps(t *testing.T) {
	lo, hi := 4.0, 20.0
	gate := IoGate{
		ID:       "tcr001",
		Cropping: &Cropping{Low: &lo, High: &hi},
		Mapping:  &ValueMapping{From: ValueBounds{Low: 4.0, High: 20.0}, To: ValueBounds{Low: 0.0, High: 100.0}},
	}
	assert.Equal(t, 0.0, ApplyGate(gate, 2.0), "out-of-range reading crops to 4.0 before mapping")
	assert.Equal(t, 50.0, ApplyGate(gate, 12.0))
	assert.Equal(t, 100.0, ApplyGate(gate, 25.0))
}

func TestRegisterGroupApplyGates(t *testing.T) {
	group, err := NewRegisterGroup("analog-in", []RegisterSpec{
		{Index: 0, Type: KindFloat64, Gate: &IoGate{
			Mapping: &ValueMapping{From: ValueBounds{Low: 4.0, High: 20.0}, To: ValueBounds{Low: 0.0, High: 100.0}},
		}},
		{Index: 1, Type: KindBool}, // no gate configured
	})
	require.NoError(t, err)

	obs := ObservedRegisterValues{
		ObservedAt: time.Unix(0, 0),
		Values:     []Option{Some(Float64(12.0)), Some(Bool(true))},
	}

	gated := group.ApplyGates(obs)
	require.NoError(t, gated.Validate(group))

	got, ok := gated.Values[0].Value.Float64()
	require.True(t, ok)
	assert.Equal(t, 50.0, got)

	b, ok := gated.Values[1].Value.Bool()
	require.True(t, ok)
	assert.True(t, b, "ungated register passes through unchanged")

	// original observation is untouched.
	origVal, _ := obs.Values[0].Value.Float64()
	assert.Equal(t, 12.0, origVal)
}

func TestRegisterGroupApplyGatesSkipsAbsentValues(t *testing.T) {
	group, err := NewRegisterGroup("analog-in", []RegisterSpec{
		{Index: 0, Type: KindFloat64, Gate: &IoGate{
			Mapping: &ValueMapping{From: ValueBounds{Low: 0, High: 10}, To: ValueBounds{Low: 0, High: 1}},
		}},
	})
	require.NoError(t, err)

	obs := ObservedRegisterValues{Values: []Option{None()}}
	gated := group.ApplyGates(obs)
	assert.False(t, gated.Values[0].Present)
}
