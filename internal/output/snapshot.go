package output

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// snapshotEndiannessFlag matches gotetra's io.go convention: 0 selects
// little-endian, -1 selects big-endian. This code always writes 0.
const snapshotEndiannessFlag int32 = 0

// SnapshotHeader is written verbatim (fixed-size, no padding beyond
// what binary.Write already gives float64/int64 fields) ahead of every
// snapshot payload, the same "flag, header size, header, payload"
// framing gotetra's sheet catalogs use, standing in for the HDF5
// dataset spec.md calls for (no HDF5 binding exists anywhere in the
// retrieved corpus; see DESIGN.md).
type SnapshotHeader struct {
	NX, NY, NZ int64
	Dx, Dt     float64
	Time       float64
	Step       int64
}

// SnapshotWriter writes one file per dataset name under outputDir,
// each self-describing via a SnapshotHeader.
type SnapshotWriter struct {
	OutputDir string
}

func NewSnapshotWriter(outputDir string) *SnapshotWriter {
	return &SnapshotWriter{OutputDir: outputDir}
}

// writeFramed writes the common "flag, header size, header, payload"
// framing shared by full snapshots, slices, and strips.
func writeFramed(path string, h any, data []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating snapshot %s: %w", path, err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, snapshotEndiannessFlag); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, int32(binary.Size(h))); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, h); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, data); err != nil {
		return err
	}
	return nil
}

// WriteField writes one field's full 3D array to
// <outputDir>/<name>.<step>.snap.
func (s *SnapshotWriter) WriteField(name string, step int, h SnapshotHeader, data []float64) error {
	path := filepath.Join(s.OutputDir, fmt.Sprintf("%s.%08d.snap", name, step))
	return writeFramed(path, h, data)
}

// SliceHeader frames a 2D plane extracted from a field (spec.md section
// 6, "2D slices... of selected fields"), always taken at the grid's
// mid-plane along z.
type SliceHeader struct {
	NX, NY int64
	Z      int64
	Dx, Dt float64
	Time   float64
	Step   int64
}

// WriteSlice writes the z = NZ/2 plane of a field's full 3D array to
// <outputDir>/<name>.slice.<step>.snap. data must be laid out with
// grid.Array's (i*ny+j)*nz+k linear index mapping.
func (s *SnapshotWriter) WriteSlice(name string, step, nx, ny, nz int, dx, dt, t float64, data []float64) error {
	z := nz / 2
	h := SliceHeader{NX: int64(nx), NY: int64(ny), Z: int64(z), Dx: dx, Dt: dt, Time: t, Step: int64(step)}
	plane := make([]float64, 0, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			plane = append(plane, data[(i*ny+j)*nz+z])
		}
	}
	path := filepath.Join(s.OutputDir, fmt.Sprintf("%s.slice.%08d.snap", name, step))
	return writeFramed(path, h, plane)
}

// StripHeader frames a 1D line extracted from a field (spec.md section
// 6, "1D strips... of selected fields"), always taken along x through
// the grid's mid-line in y and z.
type StripHeader struct {
	NX     int64
	Y, Z   int64
	Dx, Dt float64
	Time   float64
	Step   int64
}

// WriteStrip writes the x-line at (y,z) = (NY/2, NZ/2) of a field's full
// 3D array to <outputDir>/<name>.strip.<step>.snap.
func (s *SnapshotWriter) WriteStrip(name string, step, nx, ny, nz int, dx, dt, t float64, data []float64) error {
	y, z := ny/2, nz/2
	h := StripHeader{NX: int64(nx), Y: int64(y), Z: int64(z), Dx: dx, Dt: dt, Time: t, Step: int64(step)}
	strip := make([]float64, nx)
	for i := 0; i < nx; i++ {
		strip[i] = data[(i*ny+y)*nz+z]
	}
	path := filepath.Join(s.OutputDir, fmt.Sprintf("%s.strip.%08d.snap", name, step))
	return writeFramed(path, h, strip)
}

// ReadField reads back a snapshot written by WriteField, validating
// the header size the same way gotetra's readSheetHeaderAt does.
func ReadField(path string, expectLen int) (SnapshotHeader, []float64, error) {
	var h SnapshotHeader
	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()

	var flag int32
	if err := binary.Read(f, binary.LittleEndian, &flag); err != nil {
		return h, nil, err
	}
	var headerSize int32
	if err := binary.Read(f, binary.LittleEndian, &headerSize); err != nil {
		return h, nil, err
	}
	if int(headerSize) != binary.Size(h) {
		return h, nil, fmt.Errorf("output: expected header size %d, found %d", binary.Size(h), headerSize)
	}
	if err := binary.Read(f, binary.LittleEndian, &h); err != nil {
		return h, nil, err
	}
	data := make([]float64, expectLen)
	if err := binary.Read(f, binary.LittleEndian, data); err != nil {
		return h, nil, err
	}
	return h, data, nil
}
