package matter

import (
	"math"

	"github.com/kfrantz/bssncosmo/internal/bssn"
	"github.com/kfrantz/bssncosmo/internal/frw"
	"github.com/kfrantz/bssncosmo/internal/rk4"
	"github.com/kfrantz/bssncosmo/internal/stencil"
	"github.com/kfrantz/bssncosmo/utils"
)

// Static is pressureless dust at rest with respect to the Eulerian
// observer: zero momentum density, zero pressure, and a single
// conserved density field D as its only evolved quantity (spec.md
// section 4.5).
//
// D is the density measured in the conformal frame; the physical
// energy density is recovered by undoing the conformal rescaling of
// the volume element, rho = D * exp(-6*phi).
type Static struct {
	Nx, Ny, Nz int
	Dx         float64
	D          *rk4.Register
	UseShift   bool
}

// NewStatic allocates the dust density register and seeds it with a
// uniform initial density rho0 (spec.md scenario S2).
func NewStatic(nx, ny, nz int, dx float64, useShift bool, rho0 float64) *Static {
	s := &Static{Nx: nx, Ny: ny, Nz: nz, Dx: dx, UseShift: useShift, D: rk4.New("dust_D", nx, ny, nz)}
	copy(s.D.P.Data(), utils.ConstArray(s.D.P.Len(), rho0))
	return s
}

func (s *Static) Registers() []*rk4.Register { return []*rk4.Register{s.D} }

// AddBSSNSource adds rho = D*exp(-6*phi) into the density slot; the
// momentum density, trace of stress, and trace-free stress stay at
// their zero-initialized value since dust at rest has no pressure.
func (s *Static) AddBSSNSource(b *bssn.BSSN, _ frw.State) {
	phiReg := b.Reg(bssn.Phi).A
	d := s.D.A
	for i := 0; i < s.Nx; i++ {
		for j := 0; j < s.Ny; j++ {
			for k := 0; k < s.Nz; k++ {
				rho := d.At(i, j, k) * math.Exp(-6*phiReg.At(i, j, k))
				b.Rho.Add(i, j, k, rho)
			}
		}
	}
}

// EvolveStage advances the conserved density for dust comoving with
// the Eulerian observer, d(D)/dt = beta^i d_i D: D itself has no
// expansion term, and the expansion-driven dilution of rho (the FRW
// law d(rho)/dt = alpha*K*rho in the homogeneous limit) enters only
// through the exp(-6*phi) factor in rho = D*exp(-6*phi).
func (s *Static) EvolveStage(b *bssn.BSSN) {
	d := s.D.A
	for i := 0; i < s.Nx; i++ {
		for j := 0; j < s.Ny; j++ {
			for k := 0; k < s.Nz; k++ {
				var rhs float64
				if s.UseShift {
					for a := 0; a < 3; a++ {
						beta := b.Reg(bssn.BetaField(a)).A.At(i, j, k)
						rhs += beta * stencil.D1(d, i, j, k, stencil.Axis(a), s.Dx)
					}
				}
				s.D.C.Set(i, j, k, rhs)
			}
		}
	}
}
