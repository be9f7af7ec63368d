package matter

import (
	"github.com/kfrantz/bssncosmo/internal/bssn"
	"github.com/kfrantz/bssncosmo/internal/frw"
)

// Lambda is a cosmological constant: constant energy density, negative
// pressure equal to -rho_lambda, zero momentum density and trace-free
// stress (spec.md section 4.5). It carries no evolved fields.
type Lambda struct {
	Nx, Ny, Nz int
	Rho        float64 // rho_lambda
}

func NewLambda(nx, ny, nz int, rhoLambda float64) *Lambda {
	return &Lambda{Nx: nx, Ny: ny, Nz: nz, Rho: rhoLambda}
}

// AddBSSNSource adds rho_lambda to the density slot and -3*rho_lambda
// to the trace-of-stress slot (p_lambda = -rho_lambda, and the trace
// slot carries 3p by the convention set in internal/bssn/rhs.go's use
// of Strace).
func (l *Lambda) AddBSSNSource(b *bssn.BSSN, _ frw.State) {
	for i := 0; i < l.Nx; i++ {
		for j := 0; j < l.Ny; j++ {
			for k := 0; k < l.Nz; k++ {
				b.Rho.Add(i, j, k, l.Rho)
				b.Strace.Add(i, j, k, -3*l.Rho)
			}
		}
	}
}
