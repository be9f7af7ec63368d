package bssn

import (
	"sync"

	"github.com/kfrantz/bssncosmo/internal/frw"
	"github.com/kfrantz/bssncosmo/utils"
)

// EvolveStage sweeps every cell of the grid, evaluating evalRHS at each
// point and writing the result into the "c" bank of every active
// field's register, sharded across pm's partitions of the x axis. One
// goroutine per partition; each goroutine owns a single reused Paq so
// the hot loop performs no per-cell allocation (spec.md section 5,
// "intra-node parallelism").
func (b *BSSN) EvolveStage(pm *utils.PartitionMap, frwState frw.State, eta float64) {
	var wg sync.WaitGroup
	np := pm.ParallelDegree
	for part := 0; part < np; part++ {
		wg.Add(1)
		go func(part int) {
			defer wg.Done()
			iMin, iMax := pm.GetBucketRange(part)
			var p Paq
			for i := iMin; i < iMax; i++ {
				for j := 0; j < b.Ny; j++ {
					for k := 0; k < b.Nz; k++ {
						setPaqValues(b, i, j, k, frwState, &p)
						d := evalRHS(b, &p, eta)
						b.writeDeriv(i, j, k, d)
					}
				}
			}
		}(part)
	}
	wg.Wait()
}

// writeDeriv writes one cell's Deriv into the "c" bank of every active
// field's register.
func (b *BSSN) writeDeriv(i, j, k int, d Deriv) {
	b.Reg(Phi).C.Set(i, j, k, d.Phi)
	b.Reg(K).C.Set(i, j, k, d.K)
	b.Reg(Alpha).C.Set(i, j, k, d.Alpha)
	for n, id := range gField {
		r, c := symPairs[n][0], symPairs[n][1]
		b.Reg(id).C.Set(i, j, k, d.G[r][c])
	}
	for n, id := range aField {
		r, c := symPairs[n][0], symPairs[n][1]
		b.Reg(id).C.Set(i, j, k, d.A[r][c])
	}
	for n, id := range gamField {
		b.Reg(id).C.Set(i, j, k, d.GamHat[n])
	}
	if b.Features.UseShift {
		for n, id := range betaField {
			b.Reg(id).C.Set(i, j, k, d.Beta[n])
		}
		for n, id := range bField {
			b.Reg(id).C.Set(i, j, k, d.B[n])
		}
	}
	if b.Features.UseZ4c {
		b.Reg(Theta).C.Set(i, j, k, d.Theta)
	}
}

// ConstraintSweep evaluates the Hamiltonian and momentum constraints at
// every cell and returns the grid-wide summary statistics used by the
// diagnostic output (spec.md section 4.4, testable property 6). It runs
// single-threaded since diagnostics are not on the hot path.
func (b *BSSN) ConstraintSweep(frwState frw.State) ConstraintStats {
	acc := newConstraintAccumulator()
	var p Paq
	for i := 0; i < b.Nx; i++ {
		for j := 0; j < b.Ny; j++ {
			for k := 0; k < b.Nz; k++ {
				setPaqValues(b, i, j, k, frwState, &p)
				EvalConstraints(&p)
				acc.add(&p)
			}
		}
	}
	return acc.finalize()
}
