// Package manifest records which task directories a run produced.
package manifest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fjglira/sweepgen/internal/domain"
)

// Writer appends one CSV row per materialized task. Every row is flushed as
// soon as it is written, so an interrupted run leaves a readable prefix.
type Writer struct {
	path   string
	closer io.Closer
	csv    *csv.Writer
}

// Header returns the manifest header for the scanned names.
func Header(names []string) []string {
	return append([]string{"id", "directory"}, names...)
}

// Create truncates (or creates) the manifest at path and writes the header.
func Create(path string, names []string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, domain.NewError("manifest", path, 0, "failed to create manifest directory", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("manifest", path, 0,
			"failed to create manifest",
			"check write permissions for output.manifest",
			err)
	}
	w := &Writer{path: path, closer: f, csv: csv.NewWriter(f)}
	if err := w.write(Header(names)); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Append writes the row of one task.
func (w *Writer) Append(task domain.Task) error {
	row := append([]string{strconv.Itoa(task.ID), task.Name}, task.Combination.Strings()...)
	return w.write(row)
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	err := w.csv.Error()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return domain.NewError("manifest", w.path, 0, "failed to close manifest", err)
	}
	return nil
}

func (w *Writer) write(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return domain.NewError("manifest", w.path, 0, "failed to write row", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return domain.NewError("manifest", w.path, 0, "failed to flush row", err)
	}
	return nil
}
