package atomicstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tri uint64

const (
	triA tri = iota
	triB
	triC
)

func newTri(initial tri) *Machine[tri] {
	return New(initial, func(s tri) uint64 { return uint64(s) }, func(u uint64) tri { return tri(u) })
}

func TestSwitchFromExpectedToDesired(t *testing.T) {
	m := newTri(triA)

	out := m.SwitchFromExpectedToDesired(triA, triB)
	require.Equal(t, Accepted, out.Kind)
	assert.Equal(t, triA, out.Prev)
	assert.Equal(t, triB, m.Load())

	// already at desired -> Ignored
	out = m.SwitchFromExpectedToDesired(triA, triB)
	require.Equal(t, Ignored, out.Kind)

	// expected doesn't match current -> Rejected
	out = m.SwitchFromExpectedToDesired(triA, triC)
	require.Equal(t, Rejected, out.Kind)
	assert.Equal(t, triB, out.Current)
}

func TestSwitchToDesired(t *testing.T) {
	m := newTri(triA)

	out := m.SwitchToDesired(triB)
	require.Equal(t, Accepted, out.Kind)
	assert.Equal(t, triA, out.Prev)

	out = m.SwitchToDesired(triB)
	require.Equal(t, Ignored, out.Kind)
}

func TestPeekLoad(t *testing.T) {
	m := newTri(triA)
	assert.Equal(t, triA, m.Peek())
	assert.Equal(t, triA, m.Load())
	m.SwitchToDesired(triC)
	assert.Equal(t, triC, m.Peek())
	assert.Equal(t, triC, m.Load())
}
