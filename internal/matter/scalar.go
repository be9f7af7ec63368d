package matter

import (
	"math"

	"github.com/kfrantz/bssncosmo/internal/bssn"
	"github.com/kfrantz/bssncosmo/internal/frw"
	"github.com/kfrantz/bssncosmo/internal/rk4"
	"github.com/kfrantz/bssncosmo/internal/stencil"
)

// Scalar is a minimally coupled real scalar field with potential
// V(phi) = 1/2 * mass^2 * phi^2. It carries its own RK4 registers: the
// field SPhi, its conjugate momentum Pi, and three auxiliary fields
// Psi that are evolved to track d_i(SPhi) (spec.md section 4.5). SPhi
// is named to avoid colliding with the BSSN conformal factor, which
// the rest of the codebase calls Phi.
type Scalar struct {
	Nx, Ny, Nz int
	Dx         float64
	Mass       float64
	UseShift   bool

	SPhi *rk4.Register
	Pi   *rk4.Register
	Psi  [3]*rk4.Register
}

func NewScalar(nx, ny, nz int, dx, mass float64, useShift bool) *Scalar {
	return &Scalar{
		Nx: nx, Ny: ny, Nz: nz, Dx: dx, Mass: mass, UseShift: useShift,
		SPhi: rk4.New("scalar_phi", nx, ny, nz),
		Pi:   rk4.New("scalar_pi", nx, ny, nz),
		Psi:  [3]*rk4.Register{rk4.New("scalar_psi1", nx, ny, nz), rk4.New("scalar_psi2", nx, ny, nz), rk4.New("scalar_psi3", nx, ny, nz)},
	}
}

func (s *Scalar) Registers() []*rk4.Register {
	return []*rk4.Register{s.SPhi, s.Pi, s.Psi[0], s.Psi[1], s.Psi[2]}
}

func (s *Scalar) dPotential(phi float64) float64 { return s.Mass * s.Mass * phi }
func (s *Scalar) potential(phi float64) float64  { return 0.5 * s.Mass * s.Mass * phi * phi }

// AddBSSNSource computes the scalar field's stress-energy at every
// cell and adds it into the BSSN source slots (spec.md section 4.5):
//
//	rho = 1/2 Pi^2 + 1/2 e^{-4*bssnPhi} gammaInv^ij psi_i psi_j + V(sphi)
//	S   = 1/2 Pi^2 - 1/2 e^{-4*bssnPhi} gammaInv^ij psi_i psi_j - 3*V(sphi)
//	S_i = -Pi * psi_i
//	STF_ij = e^{-4*bssnPhi} psi_i psi_j - trace part
func (s *Scalar) AddBSSNSource(b *bssn.BSSN, _ frw.State) {
	for i := 0; i < s.Nx; i++ {
		for j := 0; j < s.Ny; j++ {
			for k := 0; k < s.Nz; k++ {
				bssnPhi := b.Reg(bssn.Phi).A.At(i, j, k)
				sphi := s.SPhi.A.At(i, j, k)
				pi := s.Pi.A.At(i, j, k)
				var psi [3]float64
				for a := 0; a < 3; a++ {
					psi[a] = s.Psi[a].A.At(i, j, k)
				}
				gam, gamInv := bssn.ReadGamma(b, i, j, k)
				e4phi := math.Exp(-4 * bssnPhi)

				var gradSq float64
				for a := 0; a < 3; a++ {
					for c := 0; c < 3; c++ {
						gradSq += gamInv[a][c] * psi[a] * psi[c]
					}
				}
				gradSq *= e4phi

				v := s.potential(sphi)
				rho := 0.5*pi*pi + 0.5*gradSq + v
				strace := 0.5*pi*pi - 0.5*gradSq - 3*v

				b.Rho.Add(i, j, k, rho)
				b.Strace.Add(i, j, k, strace)
				b.Sx.Add(i, j, k, -pi*psi[0])
				b.Sy.Add(i, j, k, -pi*psi[1])
				b.Sz.Add(i, j, k, -pi*psi[2])

				var lowerPsi [3]float64
				for a := 0; a < 3; a++ {
					var s2 float64
					for c := 0; c < 3; c++ {
						s2 += gam[a][c] * psi[c]
					}
					lowerPsi[a] = s2
				}
				var trace float64
				for a := 0; a < 3; a++ {
					for c := 0; c < 3; c++ {
						trace += gamInv[a][c] * e4phi * psi[a] * psi[c]
					}
				}
				for r := 0; r < 3; r++ {
					for c := r; c < 3; c++ {
						stf := e4phi*psi[r]*psi[c] - gam[r][c]*trace/3.0
						b.STFSlot(r, c).Add(i, j, k, stf)
					}
				}
			}
		}
	}
}

// EvolveStage advances SPhi, Pi, and Psi via the first-order-in-time
// Klein-Gordon system in ADM form:
//
//	d(SPhi)/dt = alpha*Pi + beta^i psi_i
//	d(psi_i)/dt = d_i(alpha*Pi) + beta^j d_j psi_i + psi_j d_i(beta^j)
//	d(Pi)/dt    = beta^i d_i Pi + alpha*K*Pi
//	              + alpha*e^{-4*bssnPhi}*gammaInv^ij*(d_i psi_j - Gamma^k_ij psi_k - 2*d_i(bssnPhi)*psi_j)
//	              + e^{-4*bssnPhi}*gammaInv^ij*d_i(alpha)*psi_j - alpha*dV/dphi
//
// The divergence term reads the auxiliary Psi registers directly,
// subtracts the Christoffel correction via bssn.ReadChristoffelUp, and
// subtracts the conformal-connection correction
// -2*gammaInv^ij*d_i(bssnPhi)*psi_j the conformal rescaling of the
// covariant divergence introduces, rather than differentiating SPhi a
// second time.
func (s *Scalar) EvolveStage(b *bssn.BSSN) {
	for i := 0; i < s.Nx; i++ {
		for j := 0; j < s.Ny; j++ {
			for k := 0; k < s.Nz; k++ {
				alpha := b.Reg(bssn.Alpha).A.At(i, j, k)
				kk := b.Reg(bssn.K).A.At(i, j, k)
				bssnPhi := b.Reg(bssn.Phi).A.At(i, j, k)
				pi := s.Pi.A.At(i, j, k)
				var psi [3]float64
				for a := 0; a < 3; a++ {
					psi[a] = s.Psi[a].A.At(i, j, k)
				}
				_, gamInv := bssn.ReadGamma(b, i, j, k)
				christUp := bssn.ReadChristoffelUp(b, i, j, k, gamInv)
				e4phi := math.Exp(-4 * bssnPhi)

				var dPhi, dAlpha, dPi [3]float64
				for a := 0; a < 3; a++ {
					dPhi[a] = stencil.D1(b.Reg(bssn.Phi).A, i, j, k, stencil.Axis(a), s.Dx)
					dAlpha[a] = stencil.D1(b.Reg(bssn.Alpha).A, i, j, k, stencil.Axis(a), s.Dx)
					dPi[a] = stencil.D1(s.Pi.A, i, j, k, stencil.Axis(a), s.Dx)
				}

				dSPhiRHS := alpha * pi
				var betaShift [3]float64
				if s.UseShift {
					for a := 0; a < 3; a++ {
						betaShift[a] = b.Reg(bssn.BetaField(a)).A.At(i, j, k)
						dSPhiRHS += betaShift[a] * psi[a]
					}
				}
				s.SPhi.C.Set(i, j, k, dSPhiRHS)

				var div float64
				for a := 0; a < 3; a++ {
					for c := 0; c < 3; c++ {
						dPsi := stencil.D1(s.Psi[c].A, i, j, k, stencil.Axis(a), s.Dx)
						var christTerm float64
						for m := 0; m < 3; m++ {
							christTerm += christUp[m][a][c] * psi[m]
						}
						div += gamInv[a][c] * (dPsi - christTerm - 2*dPhi[a]*psi[c])
					}
				}
				var alphaGrad float64
				for a := 0; a < 3; a++ {
					for c := 0; c < 3; c++ {
						alphaGrad += gamInv[a][c] * dAlpha[a] * psi[c]
					}
				}
				piRHS := alpha*kk*pi + alpha*e4phi*div + e4phi*alphaGrad - alpha*s.dPotential(s.SPhi.A.At(i, j, k))
				if s.UseShift {
					for a := 0; a < 3; a++ {
						piRHS += betaShift[a] * stencil.D1(s.Pi.A, i, j, k, stencil.Axis(a), s.Dx)
					}
				}
				s.Pi.C.Set(i, j, k, piRHS)

				for a := 0; a < 3; a++ {
					// d_a(alpha*Pi) by the product rule, avoiding the need
					// for a scratch array of alpha*Pi values.
					dAlphaPi := alpha*dPi[a] + pi*dAlpha[a]
					psiRHS := dAlphaPi
					if s.UseShift {
						for c := 0; c < 3; c++ {
							beta := b.Reg(bssn.BetaField(c)).A.At(i, j, k)
							psiRHS += beta * stencil.D1(s.Psi[a].A, i, j, k, stencil.Axis(c), s.Dx)
							dBeta := stencil.D1(b.Reg(bssn.BetaField(c)).A, i, j, k, stencil.Axis(a), s.Dx)
							psiRHS += psi[c] * dBeta
						}
					}
					s.Psi[a].C.Set(i, j, k, psiRHS)
				}
			}
		}
	}
}
