// Package output implements the simulation's diagnostic output: the
// plain-text run log, append-only per-quantity data streams, snapshot
// binary output, and Fourier power-spectrum dumps (spec.md section 6,
// "Output files").
package output

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Logger wraps the standard library's log.Logger, writing to both
// stdout and a plain-text log file under output_dir, following the
// teacher's own PrintInitialization/PrintUpdate/PrintFinal idiom
// rather than adopting a structured-logging library (see DESIGN.md:
// no third-party logging package is meaningfully used anywhere in the
// retrieved corpus).
type Logger struct {
	*log.Logger
	file *os.File
}

// NewLogger creates output_dir if needed and opens run.log inside it,
// tee'ing every message to stdout as well.
func NewLogger(outputDir string) (*Logger, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output: creating output dir: %w", err)
	}
	f, err := os.Create(filepath.Join(outputDir, "run.log"))
	if err != nil {
		return nil, fmt.Errorf("output: creating run.log: %w", err)
	}
	w := io.MultiWriter(os.Stdout, f)
	return &Logger{Logger: log.New(w, "", log.LstdFlags), file: f}, nil
}

func (l *Logger) Close() error {
	return l.file.Close()
}

// PrintInitialization reports the grid and matter configuration once
// at the start of a run.
func (l *Logger) PrintInitialization(nx, ny, nz int, dx, dt float64, steps int, matter []string) {
	l.Printf("grid %dx%dx%d dx=%g dt=%g steps=%d matter=%v", nx, ny, nz, dx, dt, steps, matter)
}

// PrintUpdate reports per-step progress at diagnostic boundaries, including
// the normalized Hamiltonian residual ratio H/[H] (spec.md section 4.4,
// testable property 6) alongside the raw max-abs residuals.
func (l *Logger) PrintUpdate(step, steps int, t float64, hMax, mMax, hNormRatio float64) {
	l.Printf("step %d/%d t=%g |H|max=%g |M|max=%g H/[H]max=%g", step, steps, t, hMax, mMax, hNormRatio)
}

// PrintFinal reports the terminal summary of a run.
func (l *Logger) PrintFinal(steps int, elapsedSeconds float64) {
	l.Printf("finished %d steps in %.3fs", steps, elapsedSeconds)
}
