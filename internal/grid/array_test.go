package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodicIndexing(t *testing.T) {
	a := New("phi", 4, 5, 6)
	require.Equal(t, a.Index(-1, 0, 0), a.Index(3, 0, 0))
	require.Equal(t, a.Index(0, -1, 0), a.Index(0, 4, 0))
	require.Equal(t, a.Index(0, 0, -1), a.Index(0, 0, 5))
	require.Equal(t, a.Index(4, 0, 0), a.Index(0, 0, 0))
}

func TestSetAtRoundTrip(t *testing.T) {
	a := New("chi", 3, 3, 3)
	a.Set(1, 1, 1, 42.0)
	assert.Equal(t, 42.0, a.At(1, 1, 1))
	assert.Equal(t, 42.0, a.At(1, 1, -2)) // wraps to (1,1,1)
}

func TestReductions(t *testing.T) {
	a := New("K", 2, 2, 2)
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	for idx, v := range vals {
		a.SetLinear(idx, v)
	}
	assert.InDelta(t, 4.5, a.Mean(), 1e-12)
	assert.Equal(t, 1.0, a.Min())
	assert.Equal(t, 8.0, a.Max())
	assert.InDelta(t, math.Sqrt(5.25), a.StdDev(), 1e-12)
	assert.Equal(t, 0, a.NaNCount())

	a.Set(0, 0, 0, math.NaN())
	assert.Equal(t, 1, a.NaNCount())
	assert.True(t, a.HasNaN())
}

func TestSwapIsPointerExchange(t *testing.T) {
	a := New("a", 2, 2, 2)
	b := New("b", 2, 2, 2)
	a.Set(0, 0, 0, 1)
	b.Set(0, 0, 0, 2)
	aData := a.Data()
	bData := b.Data()
	a.Swap(b)
	assert.Equal(t, 2.0, a.At(0, 0, 0))
	assert.Equal(t, 1.0, b.At(0, 0, 0))
	// backing slices actually exchanged, not copied
	assert.Same(t, &bData[0], &a.Data()[0])
	assert.Same(t, &aData[0], &b.Data()[0])
}

func TestAddAccumulatesAdditively(t *testing.T) {
	a := New("rho", 2, 2, 2)
	a.Add(0, 0, 0, 1.5)
	a.Add(0, 0, 0, 2.5)
	assert.Equal(t, 4.0, a.At(0, 0, 0))
}
