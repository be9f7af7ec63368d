package frw

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func step(it *Integrator, h float64) State {
	y2 := it.Stage1(h)
	y3 := it.Stage2(h, y2)
	y4 := it.Stage3(h, y3)
	return it.Stage4(h, y4)
}

// TestDustEvolutionMatchesClosedFormK exercises scenario S2: with a
// single w=0 fluid, K(t) should track the closed-form
// K(t) = -sqrt(24*pi*rho(t)) to 4th-order accuracy, and the background
// stays on the Hamiltonian constraint surface K^2/3 = 8*pi*rho.
func TestDustEvolutionMatchesClosedFormK(t *testing.T) {
	rho0 := 3.0 / (8.0 * math.Pi)
	s0 := State{Phi: 0, K: KClosedForm(rho0), Fluids: []Fluid{{Rho: rho0, W: 0}}}
	it := NewIntegrator(s0)

	h := 1e-3
	var s State
	for i := 0; i < 50; i++ {
		s = step(it, h)
	}
	wantK := KClosedForm(s.Fluids[0].Rho)
	assert.InDelta(t, wantK, s.K, 1e-6)

	// stays on the constraint surface
	constraintResidual := s.K*s.K/3.0 - 8*math.Pi*s.Fluids[0].Rho
	assert.InDelta(t, 0, constraintResidual, 1e-6)
}

func TestZeroFieldsRemainZero(t *testing.T) {
	s0 := State{Phi: 0, K: 0, Fluids: nil}
	it := NewIntegrator(s0)
	s := step(it, 0.1)
	assert.Equal(t, 0.0, s.Phi)
	assert.Equal(t, 0.0, s.K)
}
