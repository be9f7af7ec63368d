// Package matter implements the matter components that source the
// BSSN evolution equations: pressureless dust, a cosmological
// constant, and a minimally coupled real scalar field (spec.md
// section 4.5).
package matter

import (
	"github.com/kfrantz/bssncosmo/internal/bssn"
	"github.com/kfrantz/bssncosmo/internal/frw"
	"github.com/kfrantz/bssncosmo/internal/rk4"
)

// Component is the uniform matter contract: every component adds its
// stress-energy contribution into the BSSN source slots, additively,
// reading only the current "a"-bank state. Contributions are
// order-independent, so the driver may call components in any order.
type Component interface {
	AddBSSNSource(b *bssn.BSSN, frwState frw.State)
}

// Evolvable is implemented by matter components that carry their own
// evolved lattice fields and therefore participate in the driver's
// per-stage RK4 orchestration alongside the BSSN registry.
type Evolvable interface {
	Component
	Registers() []*rk4.Register
	EvolveStage(b *bssn.BSSN)
}

// StepInitAll runs stepInit on every evolvable component's registers.
func StepInitAll(components []Evolvable) {
	for _, c := range components {
		for _, r := range c.Registers() {
			r.StepInit()
		}
	}
}

// FinalizeAll dispatches RK{stage}Finalize on every evolvable
// component's registers.
func FinalizeAll(components []Evolvable, stage int, h float64) {
	for _, c := range components {
		for _, r := range c.Registers() {
			switch stage {
			case 1:
				r.RK1Finalize(h)
			case 2:
				r.RK2Finalize(h)
			case 3:
				r.RK3Finalize(h)
			case 4:
				r.RK4Finalize(h)
			default:
				panic("matter: stage must be 1..4")
			}
		}
	}
}

// AggregateSources clears the BSSN source slots and calls
// AddBSSNSource on every component in order. Because contributions are
// additive, the result is independent of component order (spec.md
// testable property 4).
func AggregateSources(b *bssn.BSSN, components []Component, frwState frw.State) {
	b.ClearSrc()
	for _, c := range components {
		c.AddBSSNSource(b, frwState)
	}
}
