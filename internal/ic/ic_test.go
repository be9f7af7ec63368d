package ic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kfrantz/bssncosmo/internal/bssn"
)

func TestConformalPresetLeavesMetricFlat(t *testing.T) {
	b := bssn.New(bssn.Features{}, 8, 8, 8, 1.0, 0.01)
	Apply("conformal", b, 1.0, Params{Seed: 1}, nil)
	assert.Equal(t, 0.0, b.Reg(bssn.G11).P.At(3, 3, 3))
	assert.Equal(t, 1.0, b.Reg(bssn.Alpha).P.At(3, 3, 3))
}

func TestSpherePresetPerturbsPhiNearShell(t *testing.T) {
	b := bssn.New(bssn.Features{}, 16, 16, 16, 1.0, 0.01)
	Apply("sphere", b, 1.0, Params{ShellAmplitude: 1e-5, ShellAngularScaleL: 2, Seed: 1}, nil)
	var maxAbs float64
	phi := b.Reg(bssn.Phi).P
	for i := range phi.Data() {
		v := phi.Data()[i]
		if v < 0 {
			v = -v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}
	assert.Greater(t, maxAbs, 0.0)
}

func TestLegendreP00IsOne(t *testing.T) {
	assert.InDelta(t, 1.0, legendreP(0, 0, 0.3), 1e-12)
}

func TestLegendreP10MatchesX(t *testing.T) {
	assert.InDelta(t, 0.3, legendreP(1, 0, 0.3), 1e-12)
}
