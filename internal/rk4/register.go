// Package rk4 implements the four-bank register that backs every
// evolved lattice field, and the classical 4th-order Runge-Kutta
// finalize operations that combine the banks stage by stage.
package rk4

import "github.com/kfrantz/bssncosmo/internal/grid"

// Register holds the four synchronized banks for one evolved scalar
// field: p (previous), a (active), c (computed), f (final). All four
// banks share one shape and are allocated once at construction.
//
// The banks trade memory (4x per field) for zero-copy stage transitions:
// every RK{n}Finalize call swaps the backing storage of a and c rather
// than copying it.
type Register struct {
	Name string
	P, A, C, F *grid.Array
}

// New allocates all four banks for a field of the given shape.
func New(name string, nx, ny, nz int) *Register {
	return &Register{
		Name: name,
		P:    grid.New(name+".p", nx, ny, nz),
		A:    grid.New(name+".a", nx, ny, nz),
		C:    grid.New(name+".c", nx, ny, nz),
		F:    grid.New(name+".f", nx, ny, nz),
	}
}

// StepInit copies p into a and zeroes f, establishing the state the
// stage-1 RHS evaluator reads.
func (r *Register) StepInit() {
	r.A.CopyFrom(r.P)
	r.F.Zero()
}

// combine sets c[i] = p[i] + coeff*c[i] pointwise, in place.
func combine(c, p *grid.Array, coeff float64) {
	cd, pd := c.Data(), p.Data()
	for i := range cd {
		cd[i] = pd[i] + coeff*cd[i]
	}
}

// accumulate sets f[i] += weight*c[i] pointwise, in place.
func accumulate(f, c *grid.Array, weight float64) {
	fd, cd := f.Data(), c.Data()
	for i := range fd {
		fd[i] += weight * cd[i]
	}
}

// RK1Finalize consumes c holding k1 = RHS(p): sets
// c <- p + (h/2)*c, accumulates f += c, then swaps a<->c so the next
// stage's RHS evaluator reads the stage-1 intermediate state from a.
func (r *Register) RK1Finalize(h float64) {
	combine(r.C, r.P, h/2.0)
	accumulate(r.F, r.C, 1.0)
	r.A.Swap(r.C)
}

// RK2Finalize is the analogous step-2 update, weighted by 2 in the
// Simpson accumulator.
func (r *Register) RK2Finalize(h float64) {
	combine(r.C, r.P, h/2.0)
	accumulate(r.F, r.C, 2.0)
	r.A.Swap(r.C)
}

// RK3Finalize is the step-3 update: c <- p + h*c (full step), weight 1.
func (r *Register) RK3Finalize(h float64) {
	combine(r.C, r.P, h)
	accumulate(r.F, r.C, 1.0)
	r.A.Swap(r.C)
}

// RK4Finalize combines the four staged contributions into the classical
// RK4 increment and commits the new state into p:
//
//	f <- (h/6)*c + (1/3)*(f - p)
//	p <- f
//
// which evaluates to p + (h/6)(k1 + 2k2 + 2k3 + k4) given how f was
// staged by RK1..RK3Finalize (f accumulated k1 + 2k2 + 2k3 there, each
// pre-combined with p; the algebra below removes the extra copies of p
// baked into those combine() calls).
func (r *Register) RK4Finalize(h float64) {
	fd, cd, pd := r.F.Data(), r.C.Data(), r.P.Data()
	for i := range fd {
		fd[i] = (h/6.0)*cd[i] + (1.0/3.0)*(fd[i]-pd[i])
	}
	r.P.CopyFrom(r.F)
	r.A.Swap(r.C)
}

// StepTerm is a no-op placeholder kept for symmetry with StepInit: after
// RK4Finalize, p already holds the committed state. It exists so driver
// code can call StepInit/StepTerm as a matched pair without special-
// casing the last stage.
func (r *Register) StepTerm() {}
