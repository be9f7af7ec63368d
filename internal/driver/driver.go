// Package driver implements the top-level per-step orchestration
// described in spec.md section 4.6: stepInit across BSSN and matter,
// source aggregation, the four RK4 stages driving BSSN, matter, and
// the reference FRW background in lockstep, periodic diagnostics, and
// NaN-triggered early termination.
package driver

import (
	"math"
	"time"

	"github.com/kfrantz/bssncosmo/internal/bssn"
	"github.com/kfrantz/bssncosmo/internal/config"
	"github.com/kfrantz/bssncosmo/internal/fftgrid"
	"github.com/kfrantz/bssncosmo/internal/frw"
	"github.com/kfrantz/bssncosmo/internal/ic"
	"github.com/kfrantz/bssncosmo/internal/matter"
	"github.com/kfrantz/bssncosmo/internal/output"
	"github.com/kfrantz/bssncosmo/internal/simerr"
	"github.com/kfrantz/bssncosmo/utils"
)

// Driver owns every long-lived object a run needs: the BSSN field
// registry, the matter sector, the optional reference FRW background,
// the parallel partition map, and the output sinks.
type Driver struct {
	Cfg *config.Config

	BSSN *bssn.BSSN
	PM   *utils.PartitionMap

	FRW *frw.Integrator

	Components []matter.Component
	Evolvable  []matter.Evolvable

	Logger   *output.Logger
	Snapshot *output.SnapshotWriter
	FFT      *fftgrid.Grid3D

	hStream *output.Stream
	mStream *output.Stream

	step int
}

// New constructs a Driver from a validated Config: allocates the BSSN
// registry, builds the requested matter components, opens the output
// sinks, and seeds initial data. Feature-mismatch errors (spec.md
// section 7, category 2) are detected here, before any step runs.
func New(cfg *config.Config) (*Driver, error) {
	features := bssn.Features{UseShift: cfg.UseShift, UseZ4c: cfg.UseZ4c}
	b := bssn.New(features, cfg.NX, cfg.NY, cfg.NZ, cfg.Dx, cfg.Dt)

	d := &Driver{
		Cfg:  cfg,
		BSSN: b,
		PM:   utils.NewPartitionMap(cfg.OmpNumThreads, cfg.NX),
	}

	if cfg.UseFRW {
		d.FRW = frw.NewIntegrator(frw.State{Phi: 0, K: 0})
	}

	var dust *matter.Static
	for _, name := range cfg.MatterComponents {
		switch name {
		case "static":
			s := matter.NewStatic(cfg.NX, cfg.NY, cfg.NZ, cfg.Dx, cfg.UseShift, cfg.DustRho0)
			dust = s
			d.Components = append(d.Components, s)
			d.Evolvable = append(d.Evolvable, s)
		case "lambda":
			d.Components = append(d.Components, matter.NewLambda(cfg.NX, cfg.NY, cfg.NZ, cfg.LambdaRho))
		case "scalar":
			if !cfg.UseShift {
				return nil, simerr.NewFeatureMismatchError("scalar", "use_shift")
			}
			sc := matter.NewScalar(cfg.NX, cfg.NY, cfg.NZ, cfg.Dx, cfg.ScalarMass, cfg.UseShift)
			seedScalar(sc, cfg.ScalarICAmplitude)
			d.Components = append(d.Components, sc)
			d.Evolvable = append(d.Evolvable, sc)
		default:
			return nil, simerr.NewConfigError("matter_components", "unrecognized matter component: "+name)
		}
	}

	logger, err := output.NewLogger(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	d.Logger = logger
	d.Snapshot = output.NewSnapshotWriter(cfg.OutputDir)

	if cfg.SpectrumInterval > 0 && cfg.SpectrumField != "" {
		d.FFT = fftgrid.Initialize(cfg.NX, cfg.NY, cfg.NZ)
	}

	hStream, err := output.NewStream(cfg.OutputDir, "H_violations")
	if err != nil {
		return nil, err
	}
	d.hStream = hStream
	mStream, err := output.NewStream(cfg.OutputDir, "M_violations")
	if err != nil {
		return nil, err
	}
	d.mStream = mStream

	ic.Apply(cfg.IC, b, cfg.Dx, ic.Params{
		PeakK:              cfg.PeakK,
		PeakAmplitude:      cfg.PeakAmplitude,
		ShellAmplitude:     cfg.ShellAmplitude,
		ShellAngularScaleL: cfg.ShellAngularScaleL,
		Seed:               cfg.Seed,
	}, dust)

	return d, nil
}

// seedScalar seeds a uniform-amplitude scalar field, the simplest
// non-trivial scalar initial datum; spatial ICs for the scalar sector
// are supplementary to the perturbation presets in internal/ic, which
// perturb only BSSN fields.
func seedScalar(s *matter.Scalar, amplitude float64) {
	for i := range s.SPhi.P.Data() {
		s.SPhi.P.Data()[i] = amplitude
	}
}

// frwState returns the reference FRW background's current state, or a
// zero state when the run has no FRW background enabled: bssn per-point
// assembly always needs a value to read (spec.md section 3, "per-point
// work structure... all fields initialize to zero").
func (d *Driver) frwState() frw.State {
	if d.FRW == nil {
		return frw.State{}
	}
	return d.FRW.P
}

// Close releases the driver's output sinks.
func (d *Driver) Close() {
	d.hStream.Close()
	d.mStream.Close()
	d.Logger.Close()
}

// Run executes cfg.Steps RK4 steps, emitting diagnostics every
// MetaOutputInterval steps and aborting on NaN detection (spec.md
// section 7, category 4).
func (d *Driver) Run() error {
	start := time.Now()
	d.Logger.PrintInitialization(d.Cfg.NX, d.Cfg.NY, d.Cfg.NZ, d.Cfg.Dx, d.Cfg.Dt, d.Cfg.Steps, d.Cfg.MatterComponents)

	for s := 0; s < d.Cfg.Steps; s++ {
		d.step = s
		if err := d.runStep(); err != nil {
			return err
		}
	}
	d.Logger.PrintFinal(d.Cfg.Steps, time.Since(start).Seconds())
	return nil
}

// runStep advances the simulation by one full RK4 step (spec.md section
// 4.6, all five numbered points).
func (d *Driver) runStep() error {
	b := d.BSSN

	b.StepInit()
	matter.StepInitAll(d.Evolvable)
	matter.AggregateSources(b, d.Components, d.frwState())

	if err := d.diagnose(); err != nil {
		return err
	}

	stageFRW := d.FRW
	var y2, y3, y4 frw.State

	runStage := func(stage int, frwIn frw.State, frwOut *frw.State) {
		b.EvolveStage(d.PM, frwIn, d.Cfg.Eta)
		for _, ev := range d.Evolvable {
			ev.EvolveStage(b)
		}
		if stageFRW != nil {
			switch stage {
			case 1:
				*frwOut = stageFRW.Stage1(d.Cfg.Dt)
			case 2:
				*frwOut = stageFRW.Stage2(d.Cfg.Dt, frwIn)
			case 3:
				*frwOut = stageFRW.Stage3(d.Cfg.Dt, frwIn)
			case 4:
				*frwOut = stageFRW.Stage4(d.Cfg.Dt, frwIn)
			}
		}
		b.Finalize(stage, d.Cfg.Dt)
		matter.FinalizeAll(d.Evolvable, stage, d.Cfg.Dt)
		matter.AggregateSources(b, d.Components, d.frwState())
	}

	runStage(1, d.frwState(), &y2)
	runStage(2, y2, &y3)
	runStage(3, y3, &y4)
	runStage(4, y4, &y2)

	b.StepTerm()

	return nil
}

// diagnose runs the constraint sweep, logs progress, and emits
// snapshots/spectra at the configured interval; it returns a BlowupError
// if any BSSN field currently holds a NaN (spec.md section 7, category 4).
func (d *Driver) diagnose() error {
	b := d.BSSN
	if b.HasNaN() {
		for _, id := range b.Fields() {
			for n, v := range b.Reg(id).P.Data() {
				if math.IsNaN(v) {
					ny, nz := d.Cfg.NY, d.Cfg.NZ
					return simerr.NewBlowupError(d.step, id.String(), n/(ny*nz), (n/nz)%ny, n%nz)
				}
			}
		}
	}

	if d.Cfg.MetaOutputInterval <= 0 || d.step%d.Cfg.MetaOutputInterval != 0 {
		return nil
	}

	stats := b.ConstraintSweep(d.frwState())
	d.Logger.PrintUpdate(d.step, d.Cfg.Steps, float64(d.step)*d.Cfg.Dt, stats.HMaxAbs, stats.MMaxAbs, stats.HNormRatioMax)
	if err := d.hStream.Write(stats.HMean, stats.HMaxAbs); err != nil {
		d.Logger.Printf("output: writing H_violations: %v", err)
	}
	if err := d.mStream.Write(stats.MMean, stats.MMaxAbs); err != nil {
		d.Logger.Printf("output: writing M_violations: %v", err)
	}
	d.hStream.Flush()
	d.mStream.Flush()

	header := output.SnapshotHeader{
		NX: int64(d.Cfg.NX), NY: int64(d.Cfg.NY), NZ: int64(d.Cfg.NZ),
		Dx: d.Cfg.Dx, Dt: d.Cfg.Dt,
		Time: float64(d.step) * d.Cfg.Dt, Step: int64(d.step),
	}
	for _, name := range d.Cfg.SnapshotFields {
		id, ok := bssn.FieldByName(name)
		if !ok {
			continue
		}
		if err := d.Snapshot.WriteField(name, d.step, header, b.Reg(id).P.Data()); err != nil {
			d.Logger.Printf("output: writing snapshot %s: %v", name, err)
		}
	}
	for _, name := range d.Cfg.SliceFields {
		id, ok := bssn.FieldByName(name)
		if !ok {
			continue
		}
		if err := d.Snapshot.WriteSlice(name, d.step, d.Cfg.NX, d.Cfg.NY, d.Cfg.NZ, d.Cfg.Dx, d.Cfg.Dt, header.Time, b.Reg(id).P.Data()); err != nil {
			d.Logger.Printf("output: writing slice %s: %v", name, err)
		}
	}
	for _, name := range d.Cfg.StripFields {
		id, ok := bssn.FieldByName(name)
		if !ok {
			continue
		}
		if err := d.Snapshot.WriteStrip(name, d.step, d.Cfg.NX, d.Cfg.NY, d.Cfg.NZ, d.Cfg.Dx, d.Cfg.Dt, header.Time, b.Reg(id).P.Data()); err != nil {
			d.Logger.Printf("output: writing strip %s: %v", name, err)
		}
	}

	if d.FFT != nil {
		id, ok := bssn.FieldByName(d.Cfg.SpectrumField)
		if ok && d.step%d.Cfg.SpectrumInterval == 0 {
			spectrum := d.FFT.Forward(b.Reg(id).P.Data())
			power := d.FFT.PowerSpectrum(spectrum)
			if err := output.WriteSpectrum(d.Cfg.OutputDir, d.Cfg.SpectrumField, d.step, power); err != nil {
				d.Logger.Printf("output: writing spectrum: %v", err)
			}
		}
	}

	return nil
}
