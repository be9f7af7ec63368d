// Package stencil implements the fixed-order periodic centered finite
// difference operators used throughout the BSSN right-hand side: first
// and second partial derivatives, mixed second derivatives, the
// Laplacian, and upwind advective derivatives.
package stencil

import "github.com/kfrantz/bssncosmo/internal/grid"

// Axis identifies one of the three lattice directions.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// Order is the compile-time stencil order. The spec fixes this as a
// build-time property (Non-goals: arbitrary-order spatial stencils);
// 4th order is the default and only order implemented.
const Order = 4

// shift returns the neighbor index of (i,j,k) offset by n along axis.
func shift(i, j, k int, axis Axis, n int) (int, int, int) {
	switch axis {
	case X:
		return i + n, j, k
	case Y:
		return i, j + n, k
	default:
		return i, j, k + n
	}
}

// D1 returns the 4th-order periodic centered first derivative of f
// along axis at (i,j,k), given the uniform grid spacing dx.
//
//	d/dx f = (-f[i+2] + 8f[i+1] - 8f[i-1] + f[i-2]) / (12 dx)
func D1(f *grid.Array, i, j, k int, axis Axis, dx float64) float64 {
	im2i, im2j, im2k := shift(i, j, k, axis, -2)
	im1i, im1j, im1k := shift(i, j, k, axis, -1)
	ip1i, ip1j, ip1k := shift(i, j, k, axis, 1)
	ip2i, ip2j, ip2k := shift(i, j, k, axis, 2)
	return (-f.At(ip2i, ip2j, ip2k) + 8*f.At(ip1i, ip1j, ip1k) -
		8*f.At(im1i, im1j, im1k) + f.At(im2i, im2j, im2k)) / (12 * dx)
}

// D2 returns the 4th-order periodic centered second derivative of f
// along axis at (i,j,k).
//
//	d2/dx2 f = (-f[i+2] + 16f[i+1] - 30f[i] + 16f[i-1] - f[i-2]) / (12 dx^2)
func D2(f *grid.Array, i, j, k int, axis Axis, dx float64) float64 {
	im2i, im2j, im2k := shift(i, j, k, axis, -2)
	im1i, im1j, im1k := shift(i, j, k, axis, -1)
	ip1i, ip1j, ip1k := shift(i, j, k, axis, 1)
	ip2i, ip2j, ip2k := shift(i, j, k, axis, 2)
	return (-f.At(ip2i, ip2j, ip2k) + 16*f.At(ip1i, ip1j, ip1k) - 30*f.At(i, j, k) +
		16*f.At(im1i, im1j, im1k) - f.At(im2i, im2j, im2k)) / (12 * dx * dx)
}

// D1D1 returns the mixed second partial derivative d^2f/(d axisA d axisB)
// via a tensor product of two first-derivative stencils. axisA must not
// equal axisB (use D2 for the diagonal case).
func D1D1(f *grid.Array, i, j, k int, axisA, axisB Axis, dx float64) float64 {
	if axisA == axisB {
		panic("stencil: D1D1 requires distinct axes; use D2 for the diagonal")
	}
	// Apply a first-derivative stencil along axisA to values that are
	// themselves the first-derivative-along-axisB at each of the five
	// stencil points, i.e. two nested 1D stencils.
	eval := func(n int) float64 {
		pi, pj, pk := shift(i, j, k, axisA, n)
		return D1(f, pi, pj, pk, axisB, dx)
	}
	return (-eval(2) + 8*eval(1) - 8*eval(-1) + eval(-2)) / (12 * dx)
}

// Laplacian returns the flat-space Laplacian of f at (i,j,k): the sum
// of the three second derivatives.
func Laplacian(f *grid.Array, i, j, k int, dx float64) float64 {
	return D2(f, i, j, k, X, dx) + D2(f, i, j, k, Y, dx) + D2(f, i, j, k, Z, dx)
}

// Advect returns the upwind (advective) first derivative of f along
// axis at (i,j,k), used for terms of the form beta^i partial_i(f). The
// sign of shiftSpeed selects the upwind stencil direction: shiftSpeed>=0
// uses a backward-biased stencil, shiftSpeed<0 a forward-biased one.
//
// 4th-order upwind stencil, backward-biased (shiftSpeed >= 0):
//
//	(-f[i-3] + 6f[i-2] - 18f[i-1] + 10f[i] + 3f[i+1]) / (12 dx)
//
// forward-biased is the mirror image for shiftSpeed < 0.
func Advect(f *grid.Array, i, j, k int, axis Axis, dx, shiftSpeed float64) float64 {
	sign := 1
	if shiftSpeed < 0 {
		sign = -1
	}
	at := func(n int) float64 {
		pi, pj, pk := shift(i, j, k, axis, sign*n)
		return f.At(pi, pj, pk)
	}
	return float64(sign) * (-at(-3) + 6*at(-2) - 18*at(-1) + 10*at(0) + 3*at(1)) / (12 * dx)
}
