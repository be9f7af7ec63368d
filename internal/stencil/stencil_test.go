package stencil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kfrantz/bssncosmo/internal/grid"
)

func sineField(n int, dx float64) *grid.Array {
	a := grid.New("f", n, n, n)
	for i := 0; i < n; i++ {
		x := float64(i) * dx
		v := math.Sin(x)
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				a.Set(i, j, k, v)
			}
		}
	}
	return a
}

// TestPeriodicWrap exercises property 3: for every stencil operator and
// every axis, evaluating at index -1 returns the same value as
// evaluating at index N-1.
func TestPeriodicWrap(t *testing.T) {
	n := 8
	dx := 0.3
	f := sineField(n, dx)
	for _, axis := range []Axis{X, Y, Z} {
		assert.Equal(t, D1(f, -1, 0, 0, axis, dx), D1(f, n-1, 0, 0, axis, dx))
		assert.Equal(t, D2(f, -1, 0, 0, axis, dx), D2(f, n-1, 0, 0, axis, dx))
		assert.Equal(t, Advect(f, -1, 0, 0, axis, dx, 1.0), Advect(f, n-1, 0, 0, axis, dx, 1.0))
	}
	assert.Equal(t, Laplacian(f, -1, -1, -1, dx), Laplacian(f, n-1, n-1, n-1, dx))
}

func TestD1AccuracyOnSine(t *testing.T) {
	n := 32
	dx := 2 * math.Pi / float64(n)
	f := sineField(n, dx)
	// d/dx sin(x) = cos(x); 4th order accurate away from truncation floor
	maxErr := 0.0
	for i := 0; i < n; i++ {
		got := D1(f, i, 0, 0, X, dx)
		want := math.Cos(float64(i) * dx)
		if e := math.Abs(got - want); e > maxErr {
			maxErr = e
		}
	}
	assert.Less(t, maxErr, 1e-3)
}

func TestLaplacianOfSineSum(t *testing.T) {
	n := 32
	dx := 2 * math.Pi / float64(n)
	f := grid.New("f", n, n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				x, y, z := float64(i)*dx, float64(j)*dx, float64(k)*dx
				f.Set(i, j, k, math.Sin(x)+math.Sin(y)+math.Sin(z))
			}
		}
	}
	// Laplacian of sin(x)+sin(y)+sin(z) = -sin(x)-sin(y)-sin(z) = -f
	i, j, k := 5, 7, 11
	got := Laplacian(f, i, j, k, dx)
	want := -f.At(i, j, k)
	assert.InDelta(t, want, got, 1e-2)
}

func TestD1D1MixedMatchesNestedD1(t *testing.T) {
	n := 16
	dx := 0.5
	f := grid.New("f", n, n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				x, y := float64(i)*dx, float64(j)*dx
				f.Set(i, j, k, x*x*y+y*y*x) // d2/dxdy = 2x+2y, exactly polynomial degree 2
			}
		}
	}
	i, j, k := 4, 4, 0
	got := D1D1(f, i, j, k, X, Y, dx)
	want := 2*float64(i)*dx + 2*float64(j)*dx
	assert.InDelta(t, want, got, 1e-6)
}
