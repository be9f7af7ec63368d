// Package bssn implements the BSSN field registry, per-point work
// assembly, per-stage right-hand side evaluation, constraint
// evaluators, and bank orchestration described in spec.md section 4.4.
package bssn

import (
	"fmt"

	"github.com/kfrantz/bssncosmo/internal/grid"
	"github.com/kfrantz/bssncosmo/internal/rk4"
)

// FieldID names one evolved BSSN field. The Design Notes call for a
// fixed ordered array of field descriptors instead of text-macro
// expansion: FieldID plus fieldTable below is that array, and every
// loop over "all BSSN fields" ranges over fieldTable so the enumeration
// order is a single source of truth.
type FieldID int

const (
	Phi FieldID = iota
	G11
	G12
	G13
	G22
	G23
	G33
	K
	A11
	A12
	A13
	A22
	A23
	A33
	Gam1
	Gam2
	Gam3
	Alpha
	Beta1
	Beta2
	Beta3
	B1
	B2
	B3
	Theta
	numFieldIDs
)

// symPairs maps the six independent conformal-metric FieldIDs to
// their (row, col) tensor slot, used throughout paq assembly.
var symPairs = [6][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 2}, {2, 2}}

var gField = [6]FieldID{G11, G12, G13, G22, G23, G33}
var aField = [6]FieldID{A11, A12, A13, A22, A23, A33}
var gamField = [3]FieldID{Gam1, Gam2, Gam3}
var betaField = [3]FieldID{Beta1, Beta2, Beta3}
var bField = [3]FieldID{B1, B2, B3}

type fieldDesc struct {
	id       FieldID
	name     string
	optional bool
	enabled  func(cfg Features) bool
}

// Features toggles the optional-feature build/runtime selectors.
type Features struct {
	UseShift bool // enables Beta1..3, B1..3
	UseZ4c   bool // enables Theta
}

var fieldTable = []fieldDesc{
	{Phi, "phi", false, nil},
	{G11, "g11", false, nil},
	{G12, "g12", false, nil},
	{G13, "g13", false, nil},
	{G22, "g22", false, nil},
	{G23, "g23", false, nil},
	{G33, "g33", false, nil},
	{K, "K", false, nil},
	{A11, "A11", false, nil},
	{A12, "A12", false, nil},
	{A13, "A13", false, nil},
	{A22, "A22", false, nil},
	{A23, "A23", false, nil},
	{A33, "A33", false, nil},
	{Gam1, "Gam1", false, nil},
	{Gam2, "Gam2", false, nil},
	{Gam3, "Gam3", false, nil},
	{Alpha, "alpha", false, nil},
	{Beta1, "beta1", true, func(f Features) bool { return f.UseShift }},
	{Beta2, "beta2", true, func(f Features) bool { return f.UseShift }},
	{Beta3, "beta3", true, func(f Features) bool { return f.UseShift }},
	{B1, "B1", true, func(f Features) bool { return f.UseShift }},
	{B2, "B2", true, func(f Features) bool { return f.UseShift }},
	{B3, "B3", true, func(f Features) bool { return f.UseShift }},
	{Theta, "Theta", true, func(f Features) bool { return f.UseZ4c }},
}

func (id FieldID) String() string {
	if int(id) < 0 || int(id) >= len(fieldTable) {
		return fmt.Sprintf("FieldID(%d)", int(id))
	}
	return fieldTable[id].name
}

// FieldByName looks up a FieldID by its diagnostic name, required by
// output/diagnostic code that selects fields from configuration.
func FieldByName(name string) (FieldID, bool) {
	for _, d := range fieldTable {
		if d.name == name {
			return d.id, true
		}
	}
	return 0, false
}

// BSSN owns the field registry (one rk4.Register per active field, in
// fieldTable order), the non-evolved source slots, and the geometry
// (grid shape, dx, dt, feature flags).
type BSSN struct {
	Features Features
	Nx, Ny, Nz int
	Dx, Dt     float64

	regs   map[FieldID]*rk4.Register
	active []FieldID // fieldTable order, filtered by Features

	// Source slots (spec.md section 4.4): overwritten each stage,
	// additive across matter components.
	Rho              *grid.Array
	Sx, Sy, Sz       *grid.Array
	Strace           *grid.Array
	STF11, STF12, STF13, STF22, STF23, STF33 *grid.Array
}

// New allocates all lattice storage for an (nx,ny,nz) grid at the given
// spacing and time step. All allocations happen here, once; nothing in
// the evolution loop allocates.
func New(features Features, nx, ny, nz int, dx, dt float64) *BSSN {
	b := &BSSN{
		Features: features,
		Nx: nx, Ny: ny, Nz: nz,
		Dx: dx, Dt: dt,
		regs: make(map[FieldID]*rk4.Register, len(fieldTable)),
		Rho:    grid.New("rho", nx, ny, nz),
		Sx:     grid.New("Sx", nx, ny, nz),
		Sy:     grid.New("Sy", nx, ny, nz),
		Sz:     grid.New("Sz", nx, ny, nz),
		Strace: grid.New("S", nx, ny, nz),
		STF11:  grid.New("STF11", nx, ny, nz),
		STF12:  grid.New("STF12", nx, ny, nz),
		STF13:  grid.New("STF13", nx, ny, nz),
		STF22:  grid.New("STF22", nx, ny, nz),
		STF23:  grid.New("STF23", nx, ny, nz),
		STF33:  grid.New("STF33", nx, ny, nz),
	}
	for _, d := range fieldTable {
		if d.optional && !d.enabled(features) {
			continue
		}
		b.regs[d.id] = rk4.New(d.name, nx, ny, nz)
		b.active = append(b.active, d.id)
	}
	return b
}

// Fields returns the active field IDs in fieldTable order.
func (b *BSSN) Fields() []FieldID { return b.active }

// Reg returns the register for a field, panicking if the field is not
// active in this build (a programmer error: callers must check
// Features before reading an optional field).
func (b *BSSN) Reg(id FieldID) *rk4.Register {
	r, ok := b.regs[id]
	if !ok {
		panic(fmt.Sprintf("bssn: field %s is not active in this configuration", id))
	}
	return r
}

// BetaField returns the FieldID of the n'th shift component, for
// matter components that need to advect their own evolved fields by
// the shift vector.
func BetaField(n int) FieldID { return betaField[n] }

func (b *BSSN) HasField(id FieldID) bool {
	_, ok := b.regs[id]
	return ok
}

// STFSlot returns the trace-free spatial stress slot for tensor index
// (r,c), r<=c.
func (b *BSSN) STFSlot(r, c int) *grid.Array {
	switch {
	case r == 0 && c == 0:
		return b.STF11
	case (r == 0 && c == 1) || (r == 1 && c == 0):
		return b.STF12
	case (r == 0 && c == 2) || (r == 2 && c == 0):
		return b.STF13
	case r == 1 && c == 1:
		return b.STF22
	case (r == 1 && c == 2) || (r == 2 && c == 1):
		return b.STF23
	case r == 2 && c == 2:
		return b.STF33
	}
	panic("bssn: invalid tensor index")
}

// ClearSrc zeros all source slots ahead of a matter-aggregation pass.
func (b *BSSN) ClearSrc() {
	b.Rho.Zero()
	b.Sx.Zero()
	b.Sy.Zero()
	b.Sz.Zero()
	b.Strace.Zero()
	for _, s := range []*grid.Array{b.STF11, b.STF12, b.STF13, b.STF22, b.STF23, b.STF33} {
		s.Zero()
	}
}

// StepInit runs stepInit (p->a, f<-0) on every active field.
func (b *BSSN) StepInit() {
	for _, id := range b.active {
		b.regs[id].StepInit()
	}
}

// StepTerm is a no-op hook kept for symmetry with StepInit; state is
// already committed into p by the fourth RK4Finalize call.
func (b *BSSN) StepTerm() {
	for _, id := range b.active {
		b.regs[id].StepTerm()
	}
}

// Finalize dispatches RK{n}Finalize on every active field's register.
func (b *BSSN) Finalize(stage int, h float64) {
	for _, id := range b.active {
		r := b.regs[id]
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
			panic("bssn: stage must be 1..4")
		}
	}
}

// HasNaN reports whether any active field's committed (p) bank -- the
// state at the start of the current step -- contains a NaN, used at
// diagnostic boundaries to detect numerical blowup.
func (b *BSSN) HasNaN() bool {
	for _, id := range b.active {
		if b.regs[id].P.HasNaN() {
			return true
		}
	}
	return false
}
