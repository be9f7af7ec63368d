package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Stream is an append-only whitespace-delimited data stream, one line
// per record, used for H_violations/M_violations/etc (spec.md section
// 6, "Output files").
type Stream struct {
	f *os.File
	w *bufio.Writer
}

func NewStream(outputDir, name string) (*Stream, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output: creating output dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(outputDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("output: opening stream %s: %w", name, err)
	}
	return &Stream{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one whitespace-delimited record.
func (s *Stream) Write(values ...float64) error {
	for i, v := range values {
		if i > 0 {
			if _, err := s.w.WriteString(" "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(s.w, "%.17g", v); err != nil {
			return err
		}
	}
	_, err := s.w.WriteString("\n")
	return err
}

func (s *Stream) Flush() error { return s.w.Flush() }

func (s *Stream) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// WriteSpectrum appends a bin-index/amplitude power-spectrum dump.
func WriteSpectrum(outputDir, field string, step int, amplitudes []float64) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(outputDir, fmt.Sprintf("spectrum_%s.%08d.txt", field, step))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i, amp := range amplitudes {
		if _, err := fmt.Fprintf(w, "%d %.17g\n", i, amp); err != nil {
			return err
		}
	}
	return w.Flush()
}

// CopyConfig writes a verbatim copy of the input configuration file
// into output_dir (spec.md section 6, "a verbatim copy of the input
// configuration file").
func CopyConfig(outputDir, configPath string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	src, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(filepath.Join(outputDir, filepath.Base(configPath)))
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}
