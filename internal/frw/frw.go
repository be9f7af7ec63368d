// Package frw implements the reference Friedmann-Robertson-Walker
// homogeneous background integrator used to subtract the background
// from BSSN fields for numerical conditioning, and (in FRW-only
// configurations) as the analytic cross-check for cosmological
// evolution.
package frw

import "math"

// Fluid is one homogeneous perfect-fluid component with equation of
// state p = w*rho.
type Fluid struct {
	Rho, W float64
}

// State is the spatially homogeneous background: the conformal factor,
// mean curvature, and a list of fluid components. It is stepped with
// the same 4-stage RK scheme as every other evolved field, but as a
// single scalar-of-scalars register rather than through internal/rk4,
// since a homogeneous state has no spatial shape to allocate a grid
// for.
type State struct {
	Phi, K float64
	Fluids []Fluid
}

// Clone returns a deep copy.
func (s State) Clone() State {
	fl := make([]Fluid, len(s.Fluids))
	copy(fl, s.Fluids)
	return State{Phi: s.Phi, K: s.K, Fluids: fl}
}

// rhoTotal is the summed energy density across fluid components.
func (s State) rhoTotal() float64 {
	var rho float64
	for _, f := range s.Fluids {
		rho += f.Rho
	}
	return rho
}

// pressureTotal is the summed pressure across fluid components.
func (s State) pressureTotal() float64 {
	var p float64
	for _, f := range s.Fluids {
		p += f.W * f.Rho
	}
	return p
}

// derivative evaluates the homogeneous Friedmann equations:
//
//	d(phi)/dt   = -K/6                 (conformal factor flow, homogeneous limit)
//	d(K)/dt     = K^2/3 + 4*pi*(rho + 3p)
//	d(rho_i)/dt = -3*(1+w_i)*rho_i*(-K/3)   (continuity via the expansion rate)
//
// The expansion rate in the conformal-time slicing used here is
// -K/3 (analogous to H = da/dt / a); this keeps the reference
// background exactly consistent with the BSSN K variable it is
// subtracted from.
func derivative(s State) State {
	H := -s.K / 3.0
	rho := s.rhoTotal()
	p := s.pressureTotal()

	d := State{
		Phi:    -s.K / 6.0,
		K:      s.K*s.K/3.0 + 4*math.Pi*(rho+3*p),
		Fluids: make([]Fluid, len(s.Fluids)),
	}
	for i, f := range s.Fluids {
		d.Fluids[i] = Fluid{
			Rho: -3 * (1 + f.W) * f.Rho * H,
			W:   0,
		}
	}
	return d
}

func addScaled(base, delta State, coeff float64) State {
	out := State{
		Phi:    base.Phi + coeff*delta.Phi,
		K:      base.K + coeff*delta.K,
		Fluids: make([]Fluid, len(base.Fluids)),
	}
	for i := range base.Fluids {
		out.Fluids[i] = Fluid{Rho: base.Fluids[i].Rho + coeff*delta.Fluids[i].Rho, W: base.Fluids[i].W}
	}
	return out
}

// Integrator steps a State forward with classical RK4, exposed as
// discrete per-stage calls (Stage1..Stage4) so the driver can advance
// FRW in lockstep with the BSSN RK stages rather than as an isolated
// sub-loop (Design Notes open question (b): prefer the variant that
// drives FRW in lockstep with BSSN stages).
type Integrator struct {
	P State // state at the start of the step
	k1, k2, k3, k4 State
}

func NewIntegrator(initial State) *Integrator {
	return &Integrator{P: initial.Clone()}
}

func (it *Integrator) Stage1(h float64) (y2 State) {
	it.k1 = derivative(it.P)
	y2 = addScaled(it.P, it.k1, h/2)
	return
}

func (it *Integrator) Stage2(h float64, y2 State) (y3 State) {
	it.k2 = derivative(y2)
	y3 = addScaled(it.P, it.k2, h/2)
	return
}

func (it *Integrator) Stage3(h float64, y3 State) (y4 State) {
	it.k3 = derivative(y3)
	y4 = addScaled(it.P, it.k3, h)
	return
}

// Stage4 evaluates k4 at y4 and commits the RK4-combined state into P,
// returning it.
func (it *Integrator) Stage4(h float64, y4 State) State {
	it.k4 = derivative(y4)
	next := State{
		Phi:    it.P.Phi + h/6*(it.k1.Phi+2*it.k2.Phi+2*it.k3.Phi+it.k4.Phi),
		K:      it.P.K + h/6*(it.k1.K+2*it.k2.K+2*it.k3.K+it.k4.K),
		Fluids: make([]Fluid, len(it.P.Fluids)),
	}
	for i := range it.P.Fluids {
		r0, w := it.P.Fluids[i].Rho, it.P.Fluids[i].W
		next.Fluids[i] = Fluid{
			Rho: r0 + h/6*(it.k1.Fluids[i].Rho+2*it.k2.Fluids[i].Rho+2*it.k3.Fluids[i].Rho+it.k4.Fluids[i].Rho),
			W:   w,
		}
	}
	it.P = next
	return next
}

// KClosedForm returns the closed-form K(t) = -sqrt(24*pi*rho) for a
// single-fluid FRW background with w=0 (dust), used by scenario S2 as
// an analytic cross-check.
func KClosedForm(rho float64) float64 {
	return -math.Sqrt(24 * math.Pi * rho)
}
