package bssn

import (
	"math"

	"github.com/kfrantz/bssncosmo/internal/stencil"
)

// Deriv is the set of per-field time derivatives evaluated at one cell,
// returned by evalRHS and written into the "c" banks by the driver's
// per-stage sweep.
type Deriv struct {
	Phi    float64
	G      [3][3]float64
	K      float64
	A      [3][3]float64
	GamHat [3]float64
	Alpha  float64
	Beta   [3]float64
	B      [3]float64
	Theta  float64
}

const eightPi = 8 * math.Pi
const fourPi = 4 * math.Pi

func divBeta(p *Paq) float64 {
	return p.DBeta[0][0] + p.DBeta[1][1] + p.DBeta[2][2]
}

func advect(vec [3]float64, dComponent [3]float64) float64 {
	return vec[0]*dComponent[0] + vec[1]*dComponent[1] + vec[2]*dComponent[2]
}

// evalRHS evaluates the full set of BSSN evolution equations at the
// cell described by p, following spec.md section 4.4:
//
//   - phi flow driven by K, alpha, and the shift divergence
//   - trace-free Lie drag of the conformal metric by the shift, minus
//     2*alpha*Atilde_ij
//   - the trace of the Einstein equations plus the matter source rho+S
//   - Atilde_ij evolution: trace-free Ricci, D_iD_j alpha, and the
//     Atilde_ik Atilde^k_j term
//   - GamHat^i driven by the divergence of Atilde^ij and the momentum
//     source
//   - 1+log lapse and (if shift is active) Gamma-driver shift/B
//   - Z4c damping on Theta if active
func evalRHS(b *BSSN, p *Paq, eta float64) Deriv {
	var d Deriv
	useShift := b.Features.UseShift
	dbeta := divBeta(p)

	// phi
	d.Phi = -p.Alpha * p.Kk / 6.0
	if useShift {
		d.Phi += advect(p.Beta, p.DPhi) + dbeta/6.0
	}

	// conformal metric: Lie drag by shift minus 2 alpha Atilde_ij
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := -2 * p.Alpha * p.A[i][j]
			if useShift {
				var lie float64
				for k := 0; k < 3; k++ {
					lie += p.Beta[k]*p.DGam[k][i][j] + p.Gam[i][k]*p.DBeta[j][k] + p.Gam[j][k]*p.DBeta[i][k]
				}
				lie -= (2.0 / 3.0) * p.Gam[i][j] * dbeta
				v += lie
			}
			d.G[i][j] = v
		}
	}

	// K: trace of the Hamiltonian evolution equation plus matter source.
	// p.TrDDAlpha is the conformal trace D~^2 alpha; the physical
	// Laplacian this equation needs is D^2 alpha = e^{-4phi} * (D~^2
	// alpha + 2 * D~^k phi * D~_k alpha).
	var aSq float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			aSq += p.A[i][j] * p.AUp[i][j]
		}
	}
	var gradPhiDotAlpha float64
	for k := 0; k < 3; k++ {
		for l := 0; l < 3; l++ {
			gradPhiDotAlpha += p.GamInv[k][l] * p.DPhi[k] * p.DAlpha[l]
		}
	}
	physicalLapAlpha := math.Exp(-4*p.Phi) * (p.TrDDAlpha + 2*gradPhiDotAlpha)
	d.K = -physicalLapAlpha + p.Alpha*(aSq+p.Kk*p.Kk/3.0) + fourPi*p.Alpha*(p.Rho+p.Strace)
	if useShift {
		d.K += advect(p.Beta, p.DK)
	}

	// Atilde_ij: trace-free part of (-D_iD_j alpha + alpha(R_ij - 8 pi S_ij)),
	// conformally rescaled, plus the algebraic K/Atilde-square term
	e4phi := math.Exp(-4 * p.Phi)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rhsTF := e4phi * (-p.DDAlphaTF[i][j] + p.Alpha*(p.RicciTF[i][j]-eightPi*p.STF[i][j]))
			var aikAkj float64
			for k := 0; k < 3; k++ {
				var akUp float64
				for l := 0; l < 3; l++ {
					akUp += p.Gam[k][l] * p.AUp[l][j]
				}
				aikAkj += p.A[i][k] * akUp
			}
			v := rhsTF + p.Alpha*(p.Kk*p.A[i][j]-2*aikAkj)
			if useShift {
				var lie float64
				for k := 0; k < 3; k++ {
					lie += p.Beta[k]*p.DA[k][i][j] + p.A[i][k]*p.DBeta[j][k] + p.A[j][k]*p.DBeta[i][k]
				}
				lie -= (2.0 / 3.0) * p.A[i][j] * dbeta
				v += lie
			}
			d.A[i][j] = v
		}
	}

	// GamHat^i: divergence of Atilde^ij, algebraic Christoffel/Atilde
	// term, momentum source, and (if shift is active) advection plus
	// the second-derivative-of-shift terms.
	for i := 0; i < 3; i++ {
		d.GamHat[i] = gamHatSourceRHS(b, p, i)
		if useShift {
			var lie float64
			for j := 0; j < 3; j++ {
				lie += p.Beta[j]*p.DGamHat[j][i] - p.GamHat[j]*p.DBeta[j][i]
			}
			lie += (2.0 / 3.0) * p.GamHat[i] * dbeta
			var traceDivBeta float64
			for j := 0; j < 3; j++ {
				for k := 0; k < 3; k++ {
					lie += p.GamInv[j][k] * secondDerivBeta(b, p, j, k, i)
				}
				traceDivBeta += secondDerivBeta(b, p, i, j, j)
			}
			lie += traceDivBeta / 3.0
			d.GamHat[i] += lie
		}
	}

	// Gauge: 1+log lapse
	d.Alpha = -2 * p.Alpha * p.Kk
	if useShift {
		d.Alpha += advect(p.Beta, p.DAlpha)
	}

	if useShift {
		for i := 0; i < 3; i++ {
			d.Beta[i] = 0.75*p.B[i] + advect(p.Beta, [3]float64{p.DBeta[0][i], p.DBeta[1][i], p.DBeta[2][i]})
			d.B[i] = d.GamHat[i] - eta*p.B[i] + advect(p.Beta, [3]float64{p.DBeta[0][i], p.DBeta[1][i], p.DBeta[2][i]})
			for j := 0; j < 3; j++ {
				d.B[i] -= p.GamHat[j] * p.DBeta[j][i]
			}
		}
	}

	if b.Features.UseZ4c {
		evalHamiltonian(p)
		d.Theta = 0.5*p.Alpha*(p.Hamiltonian-2*p.Theta*p.Kk) - p.Alpha*p.Theta
	}

	return d
}

// gamHatSourceRHS evaluates the non-advective part of the conformal
// connection function's evolution equation:
//
//	d_j Atilde^ij + 2*alpha*Gamma^i_jk Atilde^jk
//	  - (2/3)*gamma^ij d_j K - 8*pi*alpha*gamma^ij S_j + 6*alpha*Atilde^ij d_j phi
func gamHatSourceRHS(b *BSSN, p *Paq, i int) float64 {
	var divAUp float64
	for a := 0; a < 3; a++ {
		for k := 0; k < 3; k++ {
			for l := 0; l < 3; l++ {
				divAUp += dInvGamma(p, a, i, k) * p.GamInv[a][l] * p.A[k][l]
				divAUp += p.GamInv[i][k] * dInvGamma(p, a, a, l) * p.A[k][l]
				divAUp += p.GamInv[i][k] * p.GamInv[a][l] * p.DA[a][k][l]
			}
		}
	}
	var christAA float64
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			christAA += p.ChristoffelUp[i][j][k] * p.AUp[j][k]
		}
	}
	var gInvDK, gInvSj, aUpDPhi float64
	for j := 0; j < 3; j++ {
		gInvDK += p.GamInv[i][j] * p.DK[j]
		gInvSj += p.GamInv[i][j] * p.S[j]
		aUpDPhi += p.AUp[i][j] * p.DPhi[j]
	}
	return divAUp + 2*p.Alpha*christAA - (2.0/3.0)*gInvDK - eightPi*p.Alpha*gInvSj + 6*p.Alpha*aUpDPhi
}

// secondDerivBeta returns d_axisA d_axisB beta^comp.
func secondDerivBeta(b *BSSN, p *Paq, axisA, axisB, comp int) float64 {
	reg := b.Reg(betaField[comp])
	if axisA == axisB {
		return stencil.D2(reg.A, p.I, p.J, p.K, stencil.Axis(axisA), b.Dx)
	}
	return stencil.D1D1(reg.A, p.I, p.J, p.K, stencil.Axis(axisA), stencil.Axis(axisB), b.Dx)
}
