package bssn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfrantz/bssncosmo/internal/frw"
	"github.com/kfrantz/bssncosmo/utils"
)

// setFlat initializes every field to flat space (Minkowski conformal
// data with lapse 1) on the "a" bank, which setPaqValues reads from.
func setFlat(b *BSSN) {
	for _, id := range b.Fields() {
		reg := b.Reg(id)
		switch id {
		case Alpha:
			for i := range reg.A.Data() {
				reg.A.Data()[i] = 1
			}
		default:
			reg.A.Zero()
		}
	}
}

func TestFlatSpaceHasNoCurvature(t *testing.T) {
	b := New(Features{}, 8, 8, 8, 1.0, 0.01)
	setFlat(b)
	var p Paq
	setPaqValues(b, 3, 4, 5, frw.State{}, &p)
	EvalConstraints(&p)
	assert.InDelta(t, 0, p.Rscalar, 1e-10)
	assert.InDelta(t, 0, p.Hamiltonian, 1e-10)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, p.Momentum[i], 1e-10)
	}
}

func TestFlatSpaceRHSIsStatic(t *testing.T) {
	b := New(Features{}, 8, 8, 8, 1.0, 0.01)
	setFlat(b)
	var p Paq
	setPaqValues(b, 3, 4, 5, frw.State{}, &p)
	d := evalRHS(b, &p, 2.0)
	assert.InDelta(t, 0, d.Phi, 1e-12)
	assert.InDelta(t, 0, d.K, 1e-12)
	assert.InDelta(t, 0, d.Alpha, 1e-12)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, 0, d.G[i][j], 1e-12)
			assert.InDelta(t, 0, d.A[i][j], 1e-12)
		}
	}
}

// TestUniformKEvolvesLapseByOneLogRule exercises the 1+log lapse
// equation in isolation: a spatially uniform K with flat metric and
// unit lapse should drive d(alpha)/dt = -2*alpha*K exactly, with no
// contribution from curvature or shift terms.
func TestUniformKEvolvesLapseByOneLogRule(t *testing.T) {
	b := New(Features{}, 8, 8, 8, 1.0, 0.01)
	setFlat(b)
	const kVal = 0.3
	for i := range b.Reg(K).A.Data() {
		b.Reg(K).A.Data()[i] = kVal
	}
	var p Paq
	setPaqValues(b, 3, 4, 5, frw.State{}, &p)
	d := evalRHS(b, &p, 2.0)
	assert.InDelta(t, -2*1.0*kVal, d.Alpha, 1e-10)
	assert.InDelta(t, -kVal/6.0, d.Phi, 1e-10)
}

// TestConstraintSweepMatchesPerCellEvaluation checks that the
// grid-wide accumulator's mean Hamiltonian residual matches a manual
// average over a hand-evaluated per-cell loop, on a non-trivial field
// (a small sinusoidal perturbation of the conformal metric) so the
// accumulator is exercised on nonzero data.
func TestConstraintSweepMatchesPerCellEvaluation(t *testing.T) {
	nx, ny, nz := 6, 6, 6
	b := New(Features{}, nx, ny, nz, 1.0, 0.01)
	setFlat(b)
	amp := 1e-4
	g11 := b.Reg(G11).A
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				g11.Set(i, j, k, amp*math.Sin(2*math.Pi*float64(i)/float64(nx)))
			}
		}
	}

	stats := b.ConstraintSweep(frw.State{})

	var sum, maxAbs float64
	var p Paq
	n := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				setPaqValues(b, i, j, k, frw.State{}, &p)
				EvalConstraints(&p)
				sum += p.Hamiltonian
				if math.Abs(p.Hamiltonian) > maxAbs {
					maxAbs = math.Abs(p.Hamiltonian)
				}
				n++
			}
		}
	}
	assert.InDelta(t, sum/float64(n), stats.HMean, 1e-12)
	assert.InDelta(t, maxAbs, stats.HMaxAbs, 1e-12)
}

// TestEvolveStageMatchesSerialLoop checks that the parallel, partitioned
// EvolveStage sweep writes bit-identical "c" bank values to a serial
// reference loop over the same field configuration (property: sweep
// results are independent of partition count).
func TestEvolveStageMatchesSerialLoop(t *testing.T) {
	nx, ny, nz := 6, 4, 4
	b := New(Features{}, nx, ny, nz, 1.0, 0.01)
	setFlat(b)
	amp := 1e-3
	kReg := b.Reg(K).A
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				kReg.Set(i, j, k, amp*math.Sin(2*math.Pi*float64(i)/float64(nx)))
			}
		}
	}

	// serial reference
	want := make(map[FieldID][]float64, len(b.Fields()))
	var p Paq
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				setPaqValues(b, i, j, k, frw.State{}, &p)
				d := evalRHS(b, &p, 2.0)
				b.writeDeriv(i, j, k, d)
			}
		}
	}
	for _, id := range b.Fields() {
		cd := b.Reg(id).C.Data()
		cp := make([]float64, len(cd))
		copy(cp, cd)
		want[id] = cp
		b.Reg(id).C.Zero()
	}

	pm := utils.NewPartitionMap(3, nx)
	b.EvolveStage(pm, frw.State{}, 2.0)

	for _, id := range b.Fields() {
		got := b.Reg(id).C.Data()
		require.Len(t, got, len(want[id]))
		for idx := range got {
			assert.InDelta(t, want[id][idx], got[idx], 1e-14)
		}
	}
}
