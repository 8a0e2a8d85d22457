package ease

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, Constant(0, 100, 0, 10))
	assert.InDelta(t, 50.0, Constant(0, 100, 5, 10), 1e-9)
	assert.InDelta(t, 90.0, Constant(0, 100, 9, 10), 1e-9)
	assert.InDelta(t, 100.0, Constant(0, 100, 10, 10), 1e-9)
}

func TestInAndOutMatchCurves(t *testing.T) {
	// quadratic in: start + d*(i/l)^2
	assert.InDelta(t, 25.0, In(0, 100, 5, 10), 1e-9)
	// sqrt out: start + d*sqrt(i/l)
	assert.InDelta(t, 50.0, Out(0, 100, 25, 100), 1e-9)
	assert.InDelta(t, 10.0, Out(10, 20, 0, 4), 1e-9)
}

func TestZeroTotalYieldsEnd(t *testing.T) {
	for _, name := range Names() {
		f, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, 7.0, f(3, 7, 0, 0), name)
	}
}

func TestLookupNormalisesNames(t *testing.T) {
	for _, name := range []string{"EASE_IN", "ease-in", "Ease In", "ease_in"} {
		f, ok := Lookup(name)
		require.True(t, ok, name)
		assert.InDelta(t, 25.0, f(0, 100, 5, 10), 1e-9, name)
	}
	f, ok := Lookup("")
	require.True(t, ok)
	assert.InDelta(t, 50.0, f(0, 100, 1, 2), 1e-9)

	_, ok = Lookup("wobble")
	assert.False(t, ok)
}

func TestCurvesAreMonotonicOnUnitInterval(t *testing.T) {
	for _, name := range []string{"constant", "ease_in", "ease_out", "ease_in_out", "smooth", "smoother", "cubic_in", "cubic_out", "sine_in_out"} {
		f, _ := Lookup(name)
		prev := f(0, 1, 0, 20)
		for i := 1; i <= 20; i++ {
			v := f(0, 1, i, 20)
			assert.GreaterOrEqual(t, v, prev, "%s at %d", name, i)
			prev = v
		}
		assert.InDelta(t, 1.0, prev, 1e-9, name)
	}
}
