// Package grid implements the named, fixed-size 3D lattice buffer shared
// by every evolved field and source slot in the simulation.
package grid

import "math"

// Array is a uniform Nx x Ny x Nz lattice of float64 values addressed
// with periodic (wrapped) indexing. Every field in the program shares
// the same (Nx, Ny, Nz) shape and the same linear index mapping, so
// index (i, j, k) resolves to the same slot for every field.
type Array struct {
	name           string
	nx, ny, nz     int
	data           []float64
}

// New allocates a zero-filled Nx x Ny x Nz array.
func New(name string, nx, ny, nz int) *Array {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		panic("grid: dimensions must be positive")
	}
	return &Array{
		name: name,
		nx:   nx, ny: ny, nz: nz,
		data: make([]float64, nx*ny*nz),
	}
}

func (a *Array) Name() string        { return a.name }
func (a *Array) Rename(name string)  { a.name = name }
func (a *Array) Dims() (nx, ny, nz int) { return a.nx, a.ny, a.nz }
func (a *Array) Len() int            { return len(a.data) }

// Data returns the backing slice. Callers may read it directly for
// stencil operators that need raw access, but must go through Set/At
// for anything crossing a periodic boundary.
func (a *Array) Data() []float64 { return a.data }

func (a *Array) wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Index computes the linear slot for (i, j, k), wrapping out-of-range
// indices modulo the axis extent. This is the single global index
// mapping every component in the program must agree on.
func (a *Array) Index(i, j, k int) int {
	i = a.wrap(i, a.nx)
	j = a.wrap(j, a.ny)
	k = a.wrap(k, a.nz)
	return (i*a.ny+j)*a.nz + k
}

func (a *Array) At(i, j, k int) float64 {
	return a.data[a.Index(i, j, k)]
}

func (a *Array) Set(i, j, k int, v float64) {
	a.data[a.Index(i, j, k)] = v
}

func (a *Array) AtLinear(idx int) float64 { return a.data[idx] }
func (a *Array) SetLinear(idx int, v float64) { a.data[idx] = v }

// Add adds v into the current value at (i, j, k). Used by matter
// components accumulating additively into BSSN source slots.
func (a *Array) Add(i, j, k int, v float64) {
	idx := a.Index(i, j, k)
	a.data[idx] += v
}

// Zero fills the array with zero, without reallocating.
func (a *Array) Zero() {
	for i := range a.data {
		a.data[i] = 0
	}
}

// CopyFrom overwrites the receiver's contents from src (same shape).
func (a *Array) CopyFrom(src *Array) {
	copy(a.data, src.data)
}

// Swap exchanges the backing storage of two same-shaped arrays in O(1).
func (a *Array) Swap(b *Array) {
	if a.nx != b.nx || a.ny != b.ny || a.nz != b.nz {
		panic("grid: Swap requires matching shapes")
	}
	a.data, b.data = b.data, a.data
}

// Mean returns the arithmetic mean over all points.
func (a *Array) Mean() float64 {
	var sum float64
	for _, v := range a.data {
		sum += v
	}
	return sum / float64(len(a.data))
}

// StdDev returns the population standard deviation over all points.
func (a *Array) StdDev() float64 {
	mean := a.Mean()
	var sumSq float64
	for _, v := range a.data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(a.data)))
}

// Min returns the minimum value over all points.
func (a *Array) Min() float64 {
	m := a.data[0]
	for _, v := range a.data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the maximum value over all points.
func (a *Array) Max() float64 {
	m := a.data[0]
	for _, v := range a.data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// MaxAbs returns the maximum absolute value over all points.
func (a *Array) MaxAbs() float64 {
	var m float64
	for _, v := range a.data {
		if av := math.Abs(v); av > m {
			m = av
		}
	}
	return m
}

// NaNCount returns the number of points holding NaN.
func (a *Array) NaNCount() int {
	n := 0
	for _, v := range a.data {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// HasNaN reports whether any point holds NaN, short-circuiting.
func (a *Array) HasNaN() bool {
	for _, v := range a.data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
