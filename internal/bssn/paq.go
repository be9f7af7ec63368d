package bssn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kfrantz/bssncosmo/internal/frw"
	"github.com/kfrantz/bssncosmo/internal/stencil"
)

// Paq is the per-point work structure assembled once per cell per
// stage (spec.md section 3, "Per-point work structure"). It is a flat
// value type: callers allocate one per worker goroutine and pass a
// pointer into setPaqValues each cell, so the hot loop performs zero
// heap allocation. Every field is meaningful only when the
// corresponding optional feature is enabled; disabled slots are simply
// never written, and the zero value at declaration keeps unconditional
// reads safe.
type Paq struct {
	I, J, K int

	// Undifferenced values
	Phi, Kk, Alpha float64
	Gam            [3][3]float64 // conformal metric \tilde gamma_ij = delta_ij + Delta gamma_ij
	GamInv         [3][3]float64 // \tilde gamma^ij
	DetGam         float64
	A              [3][3]float64 // trace-free extrinsic curvature \tilde A_ij
	AUp            [3][3]float64 // \tilde A^ij
	Beta           [3]float64
	B              [3]float64
	GamHat         [3]float64
	Theta          float64

	// First derivatives
	DPhi    [3]float64
	DK      [3]float64
	DAlpha  [3]float64
	DBeta   [3][3]float64    // DBeta[i][j] = d_i beta^j
	DGam    [3][3][3]float64 // DGam[k][i][j] = d_k gamma_ij
	DGamHat [3][3]float64    // DGamHat[j][k] = d_j GamHat^k
	DA      [3][3][3]float64 // DA[j][i][k] = d_j A_ik

	// Second derivatives
	D2Phi   [3][3]float64
	D2Alpha [3][3]float64
	D2Gam   [3][3][3][3]float64 // D2Gam[k][l][i][j] = d_k d_l gamma_ij

	// Christoffel symbols of the conformal metric
	Christoffel   [3][3][3]float64 // lower: Gamma_{kij} (k is the connection index)
	ChristoffelUp [3][3][3]float64 // upper: Gamma^k_{ij}

	// Covariant double derivatives, trace and trace-free parts
	DDAlpha   [3][3]float64
	DDPhi     [3][3]float64
	DDAlphaTF [3][3]float64
	DDPhiTF   [3][3]float64
	TrDDAlpha float64

	// Ricci tensor
	Ricci   [3][3]float64
	RicciTF [3][3]float64
	Rscalar float64

	// Matter sources at this cell
	Rho    float64
	S      [3]float64
	Strace float64
	STF    [3][3]float64

	// Reference FRW background at this time
	FRW frw.State

	// Constraint values, filled in by constraints.go
	Hamiltonian float64
	Momentum    [3]float64
}

// setPaqValues assembles the full per-point work record for cell
// (i,j,k) by reading the "a" banks of every active field. This is the
// single point of contact between the field registry and the finite
// difference stencils.
func setPaqValues(b *BSSN, i, j, k int, frwState frw.State, p *Paq) {
	*p = Paq{I: i, J: j, K: k, FRW: frwState}

	dx := b.Dx
	p.Phi = b.Reg(Phi).A.At(i, j, k)
	p.Kk = b.Reg(K).A.At(i, j, k)
	p.Alpha = b.Reg(Alpha).A.At(i, j, k)

	for n, id := range gField {
		r, c := symPairs[n][0], symPairs[n][1]
		v := b.Reg(id).A.At(i, j, k)
		if r == c {
			p.Gam[r][c] = 1 + v
		} else {
			p.Gam[r][c] = v
			p.Gam[c][r] = v
		}
	}
	for n, id := range aField {
		r, c := symPairs[n][0], symPairs[n][1]
		v := b.Reg(id).A.At(i, j, k)
		p.A[r][c] = v
		p.A[c][r] = v
	}
	for n, id := range gamField {
		p.GamHat[n] = b.Reg(id).A.At(i, j, k)
	}
	if b.Features.UseShift {
		for n, id := range betaField {
			p.Beta[n] = b.Reg(id).A.At(i, j, k)
		}
		for n, id := range bField {
			p.B[n] = b.Reg(id).A.At(i, j, k)
		}
	}
	if b.Features.UseZ4c {
		p.Theta = b.Reg(Theta).A.At(i, j, k)
	}

	p.Rho = b.Rho.At(i, j, k)
	p.S[0], p.S[1], p.S[2] = b.Sx.At(i, j, k), b.Sy.At(i, j, k), b.Sz.At(i, j, k)
	p.Strace = b.Strace.At(i, j, k)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			p.STF[r][c] = b.STFSlot(r, c).At(i, j, k)
		}
	}

	invertGamma(p)

	for a := 0; a < 3; a++ {
		axis := stencil.Axis(a)
		p.DPhi[a] = stencil.D1(b.Reg(Phi).A, i, j, k, axis, dx)
		p.DK[a] = stencil.D1(b.Reg(K).A, i, j, k, axis, dx)
		p.DAlpha[a] = stencil.D1(b.Reg(Alpha).A, i, j, k, axis, dx)
		for aa := 0; aa < 3; aa++ {
			axisB := stencil.Axis(aa)
			if a == aa {
				p.D2Phi[a][aa] = stencil.D2(b.Reg(Phi).A, i, j, k, axis, dx)
				p.D2Alpha[a][aa] = stencil.D2(b.Reg(Alpha).A, i, j, k, axis, dx)
			} else {
				p.D2Phi[a][aa] = stencil.D1D1(b.Reg(Phi).A, i, j, k, axis, axisB, dx)
				p.D2Alpha[a][aa] = stencil.D1D1(b.Reg(Alpha).A, i, j, k, axis, axisB, dx)
			}
		}
		for n, id := range gamField {
			p.DGamHat[a][n] = stencil.D1(b.Reg(id).A, i, j, k, axis, dx)
		}
	}
	if b.Features.UseShift {
		for a := 0; a < 3; a++ {
			for n, id := range betaField {
				p.DBeta[a][n] = stencil.D1(b.Reg(id).A, i, j, k, stencil.Axis(a), dx)
			}
		}
	}

	for n, id := range gField {
		r, c := symPairs[n][0], symPairs[n][1]
		reg := b.Reg(id)
		for a := 0; a < 3; a++ {
			axis := stencil.Axis(a)
			d := stencil.D1(reg.A, i, j, k, axis, dx)
			p.DGam[a][r][c] = d
			p.DGam[a][c][r] = d
			for aa := 0; aa < 3; aa++ {
				axisB := stencil.Axis(aa)
				var dd float64
				if a == aa {
					dd = stencil.D2(reg.A, i, j, k, axis, dx)
				} else {
					dd = stencil.D1D1(reg.A, i, j, k, axis, axisB, dx)
				}
				p.D2Gam[a][aa][r][c] = dd
				p.D2Gam[a][aa][c][r] = dd
			}
		}
	}
	for n, id := range aField {
		r, c := symPairs[n][0], symPairs[n][1]
		reg := b.Reg(id)
		for a := 0; a < 3; a++ {
			d := stencil.D1(reg.A, i, j, k, stencil.Axis(a), dx)
			p.DA[a][r][c] = d
			p.DA[a][c][r] = d
		}
	}

	computeChristoffel(p)
	computeCovariantDerivatives(p)
	computeRicci(p)
	computeAUp(p)
}

// invertGamma inverts the 3x3 symmetric conformal metric via gonum/mat
// and records its determinant.
func invertGamma(p *Paq) {
	m := mat.NewDense(3, 3, []float64{
		p.Gam[0][0], p.Gam[0][1], p.Gam[0][2],
		p.Gam[1][0], p.Gam[1][1], p.Gam[1][2],
		p.Gam[2][0], p.Gam[2][1], p.Gam[2][2],
	})
	p.DetGam = mat.Det(m)
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		// Degenerate metric: fall back to flat space so the caller can
		// detect the blowup downstream via NaN propagation rather than
		// panicking mid-sweep.
		p.GamInv = [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		return
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			p.GamInv[r][c] = inv.At(r, c)
		}
	}
}

// computeChristoffel builds the conformal Christoffel symbols from
// \tilde gamma_ij and its first derivatives:
//
//	Gamma_{kij} = 1/2 (d_i gamma_{jk} + d_j gamma_{ik} - d_k gamma_{ij})
//	Gamma^k_{ij} = gamma^{kl} Gamma_{lij}
func computeChristoffel(p *Paq) {
	for k := 0; k < 3; k++ {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				p.Christoffel[k][i][j] = 0.5 * (p.DGam[i][j][k] + p.DGam[j][i][k] - p.DGam[k][i][j])
			}
		}
	}
	for k := 0; k < 3; k++ {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				var sum float64
				for l := 0; l < 3; l++ {
					sum += p.GamInv[k][l] * p.Christoffel[l][i][j]
				}
				p.ChristoffelUp[k][i][j] = sum
			}
		}
	}
}

// computeCovariantDerivatives assembles D_iD_j alpha and D_iD_j phi
// (covariant double derivatives w.r.t. the conformal metric) and their
// trace-free parts.
func computeCovariantDerivatives(p *Paq) {
	var trAlpha, trPhi float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var christSumA, christSumP float64
			for k := 0; k < 3; k++ {
				christSumA += p.ChristoffelUp[k][i][j] * p.DAlpha[k]
				christSumP += p.ChristoffelUp[k][i][j] * p.DPhi[k]
			}
			p.DDAlpha[i][j] = p.D2Alpha[i][j] - christSumA
			p.DDPhi[i][j] = p.D2Phi[i][j] - christSumP
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			trAlpha += p.GamInv[i][j] * p.DDAlpha[i][j]
			trPhi += p.GamInv[i][j] * p.DDPhi[i][j]
		}
	}
	p.TrDDAlpha = trAlpha
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p.DDAlphaTF[i][j] = p.DDAlpha[i][j] - p.Gam[i][j]*trAlpha/3.0
			p.DDPhiTF[i][j] = p.DDPhi[i][j] - p.Gam[i][j]*trPhi/3.0
		}
	}
}

// computeRicci assembles the conformal Ricci tensor from the second
// derivatives of the conformal metric and the evolved connection
// functions GamHat (the textbook BSSN form that avoids needing third
// derivatives of the metric), then folds in the phi-correction terms
// that lift it to the physical Ricci tensor.
func computeRicci(p *Paq) {
	var rConf [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var term1, term2, term3, term4 float64
			for l := 0; l < 3; l++ {
				for m := 0; m < 3; m++ {
					term1 += p.GamInv[l][m] * p.D2Gam[l][m][i][j]
				}
			}
			for k := 0; k < 3; k++ {
				term2 += p.Gam[k][i]*p.DGamHat[j][k] + p.Gam[k][j]*p.DGamHat[i][k]
				term3 += p.GamHat[k] * p.Christoffel[k][i][j]
			}
			for l := 0; l < 3; l++ {
				for m := 0; m < 3; m++ {
					for k := 0; k < 3; k++ {
						term4 += p.GamInv[l][m] * (p.ChristoffelUp[k][l][i]*p.Christoffel[j][k][m] +
							p.ChristoffelUp[k][l][j]*p.Christoffel[i][k][m] +
							p.ChristoffelUp[k][i][m]*p.Christoffel[k][l][j])
					}
				}
			}
			rConf[i][j] = -0.5*term1 + 0.5*term2 + term3 + term4
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			phiTerm := -2*p.DDPhi[i][j] - 2*p.Gam[i][j]*ricciLaplacianPhi(p) +
				4*p.DPhi[i]*p.DPhi[j] - 4*p.Gam[i][j]*ricciGradPhiSq(p)
			p.Ricci[i][j] = rConf[i][j] + phiTerm
		}
	}
	var trR float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			trR += p.GamInv[i][j] * p.Ricci[i][j]
		}
	}
	p.Rscalar = trR
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p.RicciTF[i][j] = p.Ricci[i][j] - p.Gam[i][j]*trR/3.0
		}
	}
}

func ricciLaplacianPhi(p *Paq) float64 {
	var lap float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var christSum float64
			for k := 0; k < 3; k++ {
				christSum += p.ChristoffelUp[k][i][j] * p.DPhi[k]
			}
			lap += p.GamInv[i][j] * (p.D2Phi[i][j] - christSum)
		}
	}
	return lap
}

func ricciGradPhiSq(p *Paq) float64 {
	var s float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += p.GamInv[i][j] * p.DPhi[i] * p.DPhi[j]
		}
	}
	return s
}

// computeAUp raises both indices of the conformal trace-free extrinsic
// curvature.
func computeAUp(p *Paq) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					sum += p.GamInv[i][k] * p.GamInv[j][l] * p.A[k][l]
				}
			}
			p.AUp[i][j] = sum
		}
	}
}

// dInvGamma returns d_a (gamma^ij), the derivative of the inverse
// conformal metric, via the standard identity d(M^-1) = -M^-1 (dM) M^-1.
func dInvGamma(p *Paq, a, i, j int) float64 {
	var s float64
	for k := 0; k < 3; k++ {
		for l := 0; l < 3; l++ {
			s += p.GamInv[i][k] * p.DGam[a][k][l] * p.GamInv[l][j]
		}
	}
	return -s
}
