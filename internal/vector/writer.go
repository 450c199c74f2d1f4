package vector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// Writer writes one feature collection to a uniquely named temporary file
// next to its destination. Finalize renames it into place; Abort removes
// it, so a failed run never leaves a truncated file behind.
type Writer struct {
	path    string
	tmpPath string
	tmp     *os.File
	buf     *bufio.Writer
	written bool
}

// NewWriter prepares a writer for the GeoJSON file at path. The parent
// directory is created if needed.
func NewWriter(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s-%s.tmp", filepath.Base(path), uuid.NewString()))
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return &Writer{path: path, tmpPath: tmpPath, tmp: f, buf: bufio.NewWriterSize(f, 1<<20)}, nil
}

// Path returns the final destination.
func (w *Writer) Path() string { return w.path }

// Write encodes c. A writer holds exactly one collection.
func (w *Writer) Write(c *Collection) error {
	return w.WriteGeoJSON(c.GeoJSON())
}

// WriteGeoJSON encodes an orb feature collection as is.
func (w *Writer) WriteGeoJSON(fc *geojson.FeatureCollection) error {
	if w.tmp == nil {
		return fmt.Errorf("write to closed writer for %s", w.path)
	}
	if w.written {
		return fmt.Errorf("%s: collection already written", w.path)
	}
	if err := json.NewEncoder(w.buf).Encode(fc); err != nil {
		return fmt.Errorf("encoding %s: %w", w.path, err)
	}
	w.written = true
	return nil
}

// Finalize flushes the temp file and moves it to the destination path.
func (w *Writer) Finalize() error {
	if w.tmp == nil {
		return fmt.Errorf("finalize closed writer for %s", w.path)
	}
	if !w.written {
		w.Abort()
		return fmt.Errorf("%s: nothing written", w.path)
	}
	if err := w.buf.Flush(); err != nil {
		w.Abort()
		return fmt.Errorf("flushing %s: %w", w.path, err)
	}
	if err := w.tmp.Sync(); err != nil {
		w.Abort()
		return fmt.Errorf("syncing %s: %w", w.path, err)
	}
	if err := w.tmp.Close(); err != nil {
		w.tmp = nil
		os.Remove(w.tmpPath)
		return fmt.Errorf("closing %s: %w", w.path, err)
	}
	w.tmp = nil
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("renaming into %s: %w", w.path, err)
	}
	return nil
}

// Abort discards the temp file. It is safe to call after Finalize.
func (w *Writer) Abort() {
	if w.tmp == nil {
		return
	}
	w.tmp.Close()
	os.Remove(w.tmpPath)
	w.tmp = nil
}

// WriteFile writes c to path atomically.
func WriteFile(path string, c *Collection) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(c); err != nil {
		w.Abort()
		return err
	}
	return w.Finalize()
}

// ReadFile loads a feature collection written by WriteFile, or any GeoJSON
// polygon collection carrying the named numeric property.
func ReadFile(path, property string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c, err := FromGeoJSON(fc, property)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
