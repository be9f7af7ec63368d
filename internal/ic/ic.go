// Package ic builds the initial data presets named in spec.md section
// 6 ("ICs"): conformal (a Gaussian-random-field perturbation solving
// the Hamiltonian constraint by construction), apples_stability
// (band-limited random noise), apples_linwave, and sphere (a
// spherical-shell perturbation), writing directly into a bssn.BSSN's
// evolved-field "p" banks before the driver's first step.
package ic

import (
	"math"

	"github.com/kfrantz/bssncosmo/internal/bssn"
	"github.com/kfrantz/bssncosmo/internal/fftgrid"
	"github.com/kfrantz/bssncosmo/internal/grid"
	"github.com/kfrantz/bssncosmo/internal/matter"
	"github.com/kfrantz/bssncosmo/internal/randgen"
	"github.com/kfrantz/bssncosmo/internal/stencil"
	"github.com/kfrantz/bssncosmo/utils"
)

// Params collects every IC-preset parameter spec.md section 6 lists.
type Params struct {
	PeakK              float64
	PeakAmplitude      float64
	ShellAmplitude     float64
	ShellAngularScaleL int
	Seed               int64
}

// Apply seeds b's "p" banks with the named preset. Fields not
// perturbed by a preset are left at their zero/flat default (flat
// conformal metric, unit lapse). dust, if non-nil, is the Static/dust
// matter component whose density register the "conformal" preset seeds
// with the perturbation matching its metric perturbation, following
// dust_ic_set_random; presets that don't touch matter ignore it.
func Apply(preset string, b *bssn.BSSN, dx float64, params Params, dust *matter.Static) {
	setFlatLapse(b)
	switch preset {
	case "conformal":
		applyConformal(b, dx, params, dust)
	case "apples_stability":
		applyStability(b, dx, params)
	case "apples_linwave":
		applyLinWave(b, dx, params)
	case "sphere":
		applySphere(b, dx, params)
	}
}

// bandLimitedField draws white Gaussian noise, band-limits it to a
// Gaussian shell of wavenumbers centered on peakK via an FFT filter, and
// rescales the result so its standard deviation equals peakAmplitude.
// This is the Go equivalent of dust_ic_set_random's
// set_gaussian_random_field: the k=0 (mean) mode is filtered out along
// with everything far from peakK, so the returned field is a proper
// zero-mean perturbation rather than raw unfiltered noise.
func bandLimitedField(nx, ny, nz int, peakK, peakAmplitude float64, seed int64) *grid.Array {
	src := randgen.NewSource(seed)
	white := make([]float64, nx*ny*nz)
	for i := range white {
		white[i] = src.Normal(0, 1)
	}

	g := fftgrid.Initialize(nx, ny, nz)
	spectrum := g.Forward(white)

	const shellWidth = 1.0
	for i := 0; i < nx; i++ {
		kx := fftgrid.Wavenumber(i, nx)
		for j := 0; j < ny; j++ {
			ky := fftgrid.Wavenumber(j, ny)
			for k := 0; k < nz; k++ {
				kz := fftgrid.Wavenumber(k, nz)
				idx := (i*ny+j)*nz + k
				if kx == 0 && ky == 0 && kz == 0 {
					spectrum[idx] = 0
					continue
				}
				kmag := math.Sqrt(float64(kx*kx + ky*ky + kz*kz))
				filter := math.Exp(-0.5 * utils.POW((kmag-peakK)/shellWidth, 2))
				spectrum[idx] *= complex(filter, 0)
			}
		}
	}

	samples := g.Inverse(spectrum)
	out := grid.New("ic_random_field", nx, ny, nz)
	var sumSq float64
	for _, v := range samples {
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))
	scale := 1.0
	if rms > 0 {
		scale = peakAmplitude / rms
	}
	for i, v := range samples {
		out.Data()[i] = v * scale
	}
	return out
}

// applyConformal seeds the conformal-cosmological preset (spec.md
// testable property 6, scenario S3): a Gaussian random field xi is
// generated band-limited around peakK, the conformal factor is set to
// phi = ln(1+xi), and (following dust_ic_set_random) the matching
// density perturbation
//
//	delta_rho = -lap(xi) / (2*pi*(1+xi)^5)
//
// is folded into dust's density register, and K is set to the uniform
// FRW value -sqrt(24*pi*rho0), so the Hamiltonian constraint is
// satisfied by construction rather than merely approximately. With
// no dust component configured, only the metric perturbation is seeded
// (a vacuum Gaussian-random-metric IC), and the residual is whatever
// curvature the unmatched perturbation induces.
func applyConformal(b *bssn.BSSN, dx float64, params Params, dust *matter.Static) {
	nx, ny, nz := b.Nx, b.Ny, b.Nz
	xi := bandLimitedField(nx, ny, nz, params.PeakK, params.PeakAmplitude, params.Seed)

	phiReg := b.Reg(bssn.Phi).P
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				phiReg.Set(i, j, k, math.Log1p(xi.At(i, j, k)))
			}
		}
	}

	if dust == nil {
		return
	}
	rho0 := dust.D.P.Mean()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				x := xi.At(i, j, k)
				lap := stencil.Laplacian(xi, i, j, k, dx)
				deltaRho := -lap / (2 * math.Pi * utils.POW(1+x, 5))
				rhoTotal := rho0 + deltaRho
				dust.D.P.Set(i, j, k, rhoTotal*math.Exp(6*math.Log1p(x)))
			}
		}
	}
	kReg := b.Reg(bssn.K).P
	k0 := -math.Sqrt(24 * math.Pi * rho0)
	for i := range kReg.Data() {
		kReg.Data()[i] = k0
	}
}

func setFlatLapse(b *bssn.BSSN) {
	alpha := b.Reg(bssn.Alpha).P
	for i := range alpha.Data() {
		alpha.Data()[i] = 1
	}
}

// applyStability seeds a small random perturbation on the conformal
// metric's G11 component, band-limited around PeakK via bandLimitedField,
// used to probe linear stability of the flat-space equilibrium (spec.md
// testable property 8's underlying scenario).
func applyStability(b *bssn.BSSN, dx float64, params Params) {
	nx, ny, nz := b.Nx, b.Ny, b.Nz
	field := bandLimitedField(nx, ny, nz, params.PeakK, params.PeakAmplitude, params.Seed)
	g11 := b.Reg(bssn.G11).P
	copy(g11.Data(), field.Data())
}

// applyLinWave seeds a traveling-wave perturbation of G11 along x, the
// analytic cross-check target for testable property 7.
func applyLinWave(b *bssn.BSSN, dx float64, params Params) {
	nx, ny, nz := b.Nx, b.Ny, b.Nz
	g11 := b.Reg(bssn.G11).P
	kWave := 2 * math.Pi * params.PeakK / (float64(nx) * dx)
	for i := 0; i < nx; i++ {
		x := float64(i) * dx
		v := params.PeakAmplitude * math.Sin(kWave*x)
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				g11.Set(i, j, k, v)
			}
		}
	}
}

// applySphere seeds a spherical-shell perturbation of the conformal
// factor using the real (Condon-Shortley, purely real) spherical
// harmonic basis at degree l = ShellAngularScaleL, summed over every m
// so the perturbation is angularly localized but, by construction,
// carries no imaginary part (Design Notes open question (a): use the
// real harmonic basis directly rather than recombining complex Y_lm
// terms after the fact).
func applySphere(b *bssn.BSSN, dx float64, params Params) {
	nx, ny, nz := b.Nx, b.Ny, b.Nz
	phi := b.Reg(bssn.Phi).P
	cx, cy, cz := float64(nx)*dx/2, float64(ny)*dx/2, float64(nz)*dx/2
	l := params.ShellAngularScaleL
	shellRadius := math.Min(cx, math.Min(cy, cz)) * 0.5
	shellWidth := dx * 4
	for i := 0; i < nx; i++ {
		x := float64(i)*dx - cx
		for j := 0; j < ny; j++ {
			y := float64(j)*dx - cy
			for k := 0; k < nz; k++ {
				z := float64(k)*dx - cz
				r := math.Sqrt(x*x + y*y + z*z)
				if r < 1e-12 {
					continue
				}
				shell := math.Exp(-utils.POW(r-shellRadius, 2) / (2 * shellWidth * shellWidth))
				var angular float64
				for m := -l; m <= l; m++ {
					angular += realSphericalHarmonic(l, m, x, y, z, r)
				}
				phi.Add(i, j, k, params.ShellAmplitude*shell*angular)
			}
		}
	}
}

// realSphericalHarmonic evaluates the real (tesseral) spherical
// harmonic of degree l and order m at the Cartesian direction (x,y,z)/r.
func realSphericalHarmonic(l, m int, x, y, z, r float64) float64 {
	costheta := z / r
	phi := math.Atan2(y, x)
	absm := m
	if absm < 0 {
		absm = -absm
	}
	p := legendreP(l, absm, costheta)
	k := math.Sqrt((2*float64(l) + 1) / (4 * math.Pi) * factorial(l-absm) / factorial(l+absm))
	switch {
	case m > 0:
		return math.Sqrt2 * k * math.Cos(float64(m)*phi) * p
	case m < 0:
		return math.Sqrt2 * k * math.Sin(float64(absm)*phi) * p
	default:
		return k * p
	}
}

// legendreP evaluates the associated Legendre polynomial P_l^m(x) via
// the standard upward recurrence, m >= 0.
func legendreP(l, m int, x float64) float64 {
	pmm := 1.0
	if m > 0 {
		somx2 := math.Sqrt((1 - x) * (1 + x))
		fact := 1.0
		for i := 1; i <= m; i++ {
			pmm *= -fact * somx2
			fact += 2
		}
	}
	if l == m {
		return pmm
	}
	pmmp1 := x * float64(2*m+1) * pmm
	if l == m+1 {
		return pmmp1
	}
	var pll float64
	for ll := m + 2; ll <= l; ll++ {
		pll = (x*float64(2*ll-1)*pmmp1 - float64(ll+m-1)*pmm) / float64(ll-m)
		pmm = pmmp1
		pmmp1 = pll
	}
	return pll
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
