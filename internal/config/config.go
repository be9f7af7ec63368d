// Package config loads the flat `key = value` simulation configuration
// file into a plain Config struct, using viper as a one-shot loader
// (spec.md section 6, "Configuration"). Nothing outside Load touches
// viper or any global configuration singleton; the rest of the program
// reads the returned struct.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/kfrantz/bssncosmo/internal/simerr"
)

// Config is the fully validated, plain-struct configuration used by
// the rest of the program.
type Config struct {
	Steps         int
	OmpNumThreads int
	NX, NY, NZ    int
	Dx, Dt        float64
	OutputDir     string

	IC                  string
	PeakK               float64
	PeakAmplitude       float64
	ShellAmplitude      float64
	ShellAngularScaleL  int
	MetaOutputInterval  int

	UseZ4c   bool
	UseShift bool
	UseFRW   bool
	Eta      float64

	ScalarMass         float64
	ScalarICAmplitude  float64
	MatterComponents   []string
	LambdaRho          float64
	DustRho0           float64

	Seed int64

	SnapshotFields []string
	SliceFields    []string
	StripFields    []string

	SpectrumField    string
	SpectrumInterval int
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads and validates the properties-style config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")

	v.SetDefault("omp_num_threads", 1)
	v.SetDefault("meta_output_interval", 100)
	v.SetDefault("ic", "conformal")
	v.SetDefault("eta", 2.0)
	v.SetDefault("seed", int64(1))
	v.SetDefault("spectrum_interval", 0)

	if err := v.ReadInConfig(); err != nil {
		return nil, simerr.NewConfigError(path, err.Error())
	}

	cfg := &Config{
		Steps:              v.GetInt("steps"),
		OmpNumThreads:      v.GetInt("omp_num_threads"),
		NX:                 v.GetInt("NX"),
		NY:                 v.GetInt("NY"),
		NZ:                 v.GetInt("NZ"),
		Dx:                 v.GetFloat64("dx"),
		Dt:                 v.GetFloat64("dt"),
		OutputDir:          v.GetString("output_dir"),
		IC:                 v.GetString("ICs"),
		PeakK:              v.GetFloat64("peak_k"),
		PeakAmplitude:      v.GetFloat64("peak_amplitude"),
		ShellAmplitude:     v.GetFloat64("shell_amplitude"),
		ShellAngularScaleL: v.GetInt("shell_angular_scale_l"),
		MetaOutputInterval: v.GetInt("meta_output_interval"),
		UseZ4c:             v.GetBool("use_z4c"),
		UseShift:           v.GetBool("use_shift"),
		UseFRW:             v.GetBool("use_frw"),
		Eta:                v.GetFloat64("eta"),
		ScalarMass:         v.GetFloat64("scalar_mass"),
		ScalarICAmplitude:  v.GetFloat64("scalar_ic_amplitude"),
		MatterComponents:   splitList(v.GetString("matter_components")),
		LambdaRho:          v.GetFloat64("lambda_rho"),
		DustRho0:           v.GetFloat64("dust_rho0"),
		Seed:               v.GetInt64("seed"),
		SnapshotFields:     splitList(v.GetString("snapshot_fields")),
		SliceFields:        splitList(v.GetString("slice_fields")),
		StripFields:        splitList(v.GetString("strip_fields")),
		SpectrumField:      v.GetString("spectrum_field"),
		SpectrumInterval:   v.GetInt("spectrum_interval"),
	}
	if cfg.IC == "" {
		cfg.IC = "conformal"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.NX <= 0 || c.NY <= 0 || c.NZ <= 0 {
		return simerr.NewConfigError("NX,NY,NZ", "grid dimensions must be positive")
	}
	if c.Dx <= 0 {
		return simerr.NewConfigError("dx", "must be positive")
	}
	if c.Dt <= 0 {
		return simerr.NewConfigError("dt", "must be positive")
	}
	if c.Steps < 0 {
		return simerr.NewConfigError("steps", "must be non-negative")
	}
	if c.OmpNumThreads <= 0 {
		return simerr.NewConfigError("omp_num_threads", "must be positive")
	}
	switch c.IC {
	case "conformal", "apples_stability", "apples_linwave", "sphere":
	default:
		return simerr.NewConfigError("ICs", "unrecognized initial condition preset: "+c.IC)
	}
	for _, m := range c.MatterComponents {
		switch m {
		case "static", "lambda", "scalar":
		default:
			return simerr.NewConfigError("matter_components", "unrecognized matter component: "+m)
		}
	}
	return nil
}
