// Package fftgrid implements the 3D FFT interface spec.md section 6
// calls for: initialize(nx,ny,nz), forward(field), inverse(field),
// with the sole required promise inverse(forward(x)) ~= x up to
// scaling. It is backed by gonum.org/v1/gonum/dsp/fourier, applying a
// 1D complex FFT along each axis in turn (a separable 3D transform),
// which keeps forward/inverse exactly invertible without needing the
// half-spectrum bookkeeping a real-input FFT would add for a
// diagnostic-only power spectrum.
package fftgrid

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Grid3D holds the per-axis FFT plans for one (nx,ny,nz) shape,
// matching spec.md's "initialize(nx,ny,nz, planning-array)" contract:
// the FFT plans are built once and reused by every Forward/Inverse
// call.
type Grid3D struct {
	nx, ny, nz int
	fx, fy, fz *fourier.CmplxFFT
}

// Initialize builds the FFT plans for a grid of shape (nx,ny,nz).
func Initialize(nx, ny, nz int) *Grid3D {
	return &Grid3D{
		nx: nx, ny: ny, nz: nz,
		fx: fourier.NewCmplxFFT(nx),
		fy: fourier.NewCmplxFFT(ny),
		fz: fourier.NewCmplxFFT(nz),
	}
}

func idx(nx, ny, nz, i, j, k int) int { return (i*ny+j)*nz + k }

// Forward transforms a real field, row-major (i,j,k), into its complex
// spectrum, returned as a new slice (field is left unchanged),
// transforming the x axis, then y, then z.
func (g *Grid3D) Forward(field []float64) []complex128 {
	out := make([]complex128, len(field))
	for i, v := range field {
		out[i] = complex(v, 0)
	}
	g.transformAxes(out, false)
	return out
}

// Inverse transforms a complex spectrum back to a real-valued field,
// discarding any residual imaginary part left by floating-point
// roundoff (the field is guaranteed real if it came from Forward of a
// real field).
func (g *Grid3D) Inverse(spectrum []complex128) []float64 {
	work := make([]complex128, len(spectrum))
	copy(work, spectrum)
	g.transformAxes(work, true)
	out := make([]float64, len(work))
	for i, c := range work {
		out[i] = real(c)
	}
	return out
}

func (g *Grid3D) transformAxes(data []complex128, inverse bool) {
	nx, ny, nz := g.nx, g.ny, g.nz
	line := make([]complex128, 0, nx)
	// x axis
	for j := 0; j < ny; j++ {
		for k := 0; k < nz; k++ {
			line = line[:0]
			for i := 0; i < nx; i++ {
				line = append(line, data[idx(nx, ny, nz, i, j, k)])
			}
			transform1D(g.fx, line, inverse)
			for i := 0; i < nx; i++ {
				data[idx(nx, ny, nz, i, j, k)] = line[i]
			}
		}
	}
	// y axis
	line = make([]complex128, 0, ny)
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			line = line[:0]
			for j := 0; j < ny; j++ {
				line = append(line, data[idx(nx, ny, nz, i, j, k)])
			}
			transform1D(g.fy, line, inverse)
			for j := 0; j < ny; j++ {
				data[idx(nx, ny, nz, i, j, k)] = line[j]
			}
		}
	}
	// z axis
	line = make([]complex128, 0, nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			line = line[:0]
			for k := 0; k < nz; k++ {
				line = append(line, data[idx(nx, ny, nz, i, j, k)])
			}
			transform1D(g.fz, line, inverse)
			for k := 0; k < nz; k++ {
				data[idx(nx, ny, nz, i, j, k)] = line[k]
			}
		}
	}
}

func transform1D(f *fourier.CmplxFFT, line []complex128, inverse bool) {
	if inverse {
		f.Sequence(line, line)
		n := float64(len(line))
		for i := range line {
			line[i] /= complex(n, 0)
		}
	} else {
		f.Coefficients(line, line)
	}
}

// PowerSpectrum bins the complex spectrum's squared magnitude by
// integer wavenumber shell (|k|), the amplitude-vs-bin-index output
// spec.md section 6 calls for.
func (g *Grid3D) PowerSpectrum(spectrum []complex128) []float64 {
	nx, ny, nz := g.nx, g.ny, g.nz
	maxBin := nx
	if ny > maxBin {
		maxBin = ny
	}
	if nz > maxBin {
		maxBin = nz
	}
	sums := make([]float64, maxBin)
	counts := make([]int, maxBin)
	for i := 0; i < nx; i++ {
		kx := wavenumber(i, nx)
		for j := 0; j < ny; j++ {
			ky := wavenumber(j, ny)
			for k := 0; k < nz; k++ {
				kz := wavenumber(k, nz)
				bin := kx*kx + ky*ky + kz*kz
				if bin >= maxBin*maxBin {
					continue
				}
				c := spectrum[idx(nx, ny, nz, i, j, k)]
				mag := real(c)*real(c) + imag(c)*imag(c)
				sums[isqrt(bin)] += mag
				counts[isqrt(bin)]++
			}
		}
	}
	out := make([]float64, maxBin)
	for b := range out {
		if counts[b] > 0 {
			out[b] = sums[b] / float64(counts[b])
		}
	}
	return out
}

func wavenumber(i, n int) int {
	if i <= n/2 {
		return i
	}
	return i - n
}

// Wavenumber returns the signed integer wavenumber that FFT bin i of an
// axis of length n corresponds to (the standard "negative frequencies in
// the back half" convention), exposed so callers that need to filter or
// weight a spectrum by |k| (internal/ic's band-limited random fields)
// don't have to reimplement the bin-to-wavenumber mapping this package
// already uses internally for PowerSpectrum.
func Wavenumber(i, n int) int { return wavenumber(i, n) }

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	for x*x > n {
		x = (x + n/x) / 2
	}
	for (x+1)*(x+1) <= n {
		x++
	}
	return x
}
