package bssn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kfrantz/bssncosmo/internal/stencil"
)

// ReadGamma reads the conformal metric at (i,j,k) from the "a" banks
// and returns it along with its inverse, computed the same way
// invertGamma does for the per-point work record. Matter components
// that need the metric to compute their stress-energy contribution
// (spec.md section 4.5, Scalar) call this instead of duplicating
// metric-inversion code.
func ReadGamma(b *BSSN, i, j, k int) (gam, gamInv [3][3]float64) {
	for n, id := range gField {
		r, c := symPairs[n][0], symPairs[n][1]
		v := b.Reg(id).A.At(i, j, k)
		if r == c {
			gam[r][c] = 1 + v
		} else {
			gam[r][c] = v
			gam[c][r] = v
		}
	}
	m := mat.NewDense(3, 3, []float64{
		gam[0][0], gam[0][1], gam[0][2],
		gam[1][0], gam[1][1], gam[1][2],
		gam[2][0], gam[2][1], gam[2][2],
	})
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		gamInv = [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		return
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			gamInv[r][c] = inv.At(r, c)
		}
	}
	return
}

// ReadChristoffelUp computes the conformal Christoffel symbols
// Gamma^k_ij at (i,j,k) from the metric registers' first derivatives,
// the same construction setPaqValues uses internally for the per-point
// work record (see paq.go's computeChristoffel), exposed for matter
// components (spec.md section 4.5, Scalar) that need the connection to
// covariantly differentiate their own auxiliary fields.
func ReadChristoffelUp(b *BSSN, i, j, k int, gamInv [3][3]float64) [3][3][3]float64 {
	dx := b.Dx
	var dGam [3][3][3]float64 // dGam[a][r][c] = d_a gamma_rc
	for n, id := range gField {
		r, c := symPairs[n][0], symPairs[n][1]
		reg := b.Reg(id)
		for a := 0; a < 3; a++ {
			d := stencil.D1(reg.A, i, j, k, stencil.Axis(a), dx)
			dGam[a][r][c] = d
			dGam[a][c][r] = d
		}
	}
	var christLower [3][3][3]float64
	for kk := 0; kk < 3; kk++ {
		for ii := 0; ii < 3; ii++ {
			for jj := 0; jj < 3; jj++ {
				christLower[kk][ii][jj] = 0.5 * (dGam[ii][jj][kk] + dGam[jj][ii][kk] - dGam[kk][ii][jj])
			}
		}
	}
	var christUp [3][3][3]float64
	for kk := 0; kk < 3; kk++ {
		for ii := 0; ii < 3; ii++ {
			for jj := 0; jj < 3; jj++ {
				var sum float64
				for l := 0; l < 3; l++ {
					sum += gamInv[kk][l] * christLower[l][ii][jj]
				}
				christUp[kk][ii][jj] = sum
			}
		}
	}
	return christUp
}
