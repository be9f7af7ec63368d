package driver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfrantz/bssncosmo/internal/bssn"
	"github.com/kfrantz/bssncosmo/internal/config"
	"github.com/kfrantz/bssncosmo/internal/matter"
)

func baseConfig(t *testing.T, n int) *config.Config {
	return &config.Config{
		Steps:              5,
		OmpNumThreads:      2,
		NX:                 n,
		NY:                 n,
		NZ:                 n,
		Dx:                 1.0,
		Dt:                 1e-3,
		OutputDir:          t.TempDir(),
		IC:                 "conformal",
		MetaOutputInterval: 1,
		Eta:                2.0,
		Seed:               1,
	}
}

// committedConstraints runs the constraint sweep on the committed state,
// preparing the banks and matter sources the way runStep does before its
// diagnostics: ConstraintSweep reads the "a" banks, which hold the last
// stage's values after Run and are still empty right after New.
func committedConstraints(d *Driver) bssn.ConstraintStats {
	d.BSSN.StepInit()
	matter.StepInitAll(d.Evolvable)
	matter.AggregateSources(d.BSSN, d.Components, d.frwState())
	return d.BSSN.ConstraintSweep(d.frwState())
}

// TestScenarioS1AllZeroStaysZero exercises spec.md scenario S1: with
// every field zero and no matter, the state and both constraints stay
// exactly zero.
func TestScenarioS1AllZeroStaysZero(t *testing.T) {
	cfg := baseConfig(t, 8)
	cfg.Steps = 10
	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Run())

	for _, id := range d.BSSN.Fields() {
		if id == bssn.Alpha {
			continue
		}
		assert.Equal(t, 0.0, d.BSSN.Reg(id).P.MaxAbs(), "field %s should stay zero", id)
	}
	stats := committedConstraints(d)
	assert.Equal(t, 0.0, stats.HMaxAbs)
	assert.Equal(t, 0.0, stats.MMaxAbs)
}

// TestScenarioS2DustPreservesHamiltonianConstraint exercises scenario
// S2's underlying invariant: a spatially uniform dust background stays
// on the Hamiltonian constraint surface K^2/3 = 8*pi*rho as it evolves,
// since a homogeneous configuration has zero spatial curvature.
func TestScenarioS2DustPreservesHamiltonianConstraint(t *testing.T) {
	cfg := baseConfig(t, 8)
	cfg.Steps = 20
	cfg.MatterComponents = []string{"static"}
	cfg.DustRho0 = 3.0 / (8.0 * math.Pi)
	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Run())

	stats := committedConstraints(d)
	assert.Less(t, stats.HMaxAbs, 1e-6)
}

// TestScenarioS3GaussianICsSatisfyConstraintBound exercises scenario S3
// at a reduced grid size (16^3 instead of 64^3, per SPEC_FULL section
// 8): the conformal-cosmological Gaussian-random-field preset, paired
// with a dust component so the matching density perturbation is folded
// in, should satisfy the normalized Hamiltonian residual bound at t=0
// (spec.md section 4.4, testable property 6).
func TestScenarioS3GaussianICsSatisfyConstraintBound(t *testing.T) {
	cfg := baseConfig(t, 16)
	cfg.IC = "conformal"
	cfg.PeakK = 6
	cfg.PeakAmplitude = 1e-5
	cfg.MatterComponents = []string{"static"}
	cfg.DustRho0 = 3.0 / (8.0 * math.Pi)
	cfg.Steps = 0
	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Close()

	stats := committedConstraints(d)
	assert.Less(t, stats.HNormRatioMax, 1e-5)
}

// TestScenarioS4SphereICHasNoImaginaryResidue exercises scenario S4:
// the spherical-shell preset is built from real spherical harmonics
// (internal/ic's Design Notes open-question resolution), so it carries
// no imaginary residue by construction. The check here is that the run
// stays finite: any latent complex-recombination bug in the harmonic
// sum would show up as a NaN, not as a separate imaginary channel.
func TestScenarioS4SphereICHasNoImaginaryResidue(t *testing.T) {
	cfg := baseConfig(t, 16)
	cfg.IC = "sphere"
	cfg.ShellAmplitude = 1e-5
	cfg.ShellAngularScaleL = 2
	cfg.Steps = 5
	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Run())
	assert.False(t, d.BSSN.HasNaN())
}
