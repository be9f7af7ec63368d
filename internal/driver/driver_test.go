package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWiresRequestedMatterComponents(t *testing.T) {
	cfg := baseConfig(t, 8)
	cfg.MatterComponents = []string{"static", "lambda", "scalar"}
	cfg.LambdaRho = 0.1
	cfg.DustRho0 = 0.2
	cfg.ScalarMass = 1.0
	cfg.UseShift = true

	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Close()

	assert.Len(t, d.Components, 3)
	assert.Len(t, d.Evolvable, 2) // static and scalar carry evolved fields; lambda does not
}

func TestNewRejectsUnrecognizedMatterComponent(t *testing.T) {
	cfg := baseConfig(t, 8)
	cfg.MatterComponents = []string{"neutrino_soup"}
	_, err := New(cfg)
	assert.Error(t, err)
}

// TestNewRejectsScalarWithoutShift exercises spec.md section 7 category
// 2's own example of a feature mismatch: the scalar sector enabled
// with the shift vector disabled.
func TestNewRejectsScalarWithoutShift(t *testing.T) {
	cfg := baseConfig(t, 8)
	cfg.MatterComponents = []string{"scalar"}
	cfg.ScalarMass = 1.0
	cfg.UseShift = false
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRunAbortsOnNaN(t *testing.T) {
	cfg := baseConfig(t, 4)
	cfg.Steps = 1
	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Close()

	d.BSSN.Reg(d.BSSN.Fields()[0]).P.Set(0, 0, 0, nanValue())
	err = d.Run()
	assert.Error(t, err)
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

func TestSpectrumOutputIsWiredWhenConfigured(t *testing.T) {
	cfg := baseConfig(t, 8)
	cfg.SpectrumField = "phi"
	cfg.SpectrumInterval = 1
	cfg.Steps = 1
	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Close()

	assert.NotNil(t, d.FFT)
	require.NoError(t, d.Run())
}
