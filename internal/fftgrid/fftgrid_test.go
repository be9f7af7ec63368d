package fftgrid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInverseOfForwardRecoversField(t *testing.T) {
	nx, ny, nz := 4, 5, 6
	g := Initialize(nx, ny, nz)
	field := make([]float64, nx*ny*nz)
	for i := range field {
		field[i] = math.Sin(float64(i)) + 0.5*float64(i%3)
	}
	spectrum := g.Forward(field)
	back := g.Inverse(spectrum)
	require := assert.New(t)
	for i := range field {
		require.InDelta(field[i], back[i], 1e-9)
	}
}

func TestPowerSpectrumIsNonNegative(t *testing.T) {
	nx, ny, nz := 4, 4, 4
	g := Initialize(nx, ny, nz)
	field := make([]float64, nx*ny*nz)
	for i := range field {
		field[i] = float64(i%7) - 3
	}
	spectrum := g.Forward(field)
	spec := g.PowerSpectrum(spectrum)
	for _, v := range spec {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}
