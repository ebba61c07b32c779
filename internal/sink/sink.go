// Package sink commits finished tables to durable tabular files.
//
// Each writer owns file handling for its format: CSV (default), JSON Lines,
// and Parquet. A table is written to a uuid-named temp file in the target
// directory and renamed into place only after the full table is flushed, so
// a failed run never leaves a partial file under a final name.
package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vegasq/tablify/internal/transform"
)

// Format names an output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSONL, FormatParquet:
		return Format(s), nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: csv, jsonl, parquet)", s)
	}
}

// TableWriter commits one table to a file and returns the final path.
type TableWriter interface {
	Write(t *transform.Table) (string, error)
}

// New returns the writer for a format. dir is created if missing. suffix,
// when non-empty, is appended to every file's base name (the pipeline uses
// a per-run timestamp).
func New(format Format, dir, suffix string) (TableWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	switch format {
	case FormatCSV:
		return &CSVWriter{Dir: dir, Suffix: suffix}, nil
	case FormatJSONL:
		return &JSONLWriter{Dir: dir, Suffix: suffix}, nil
	case FormatParquet:
		return &ParquetWriter{Dir: dir, Suffix: suffix}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// fileName builds "<name><suffix>.<ext>" under dir.
func fileName(dir, name, suffix, ext string) string {
	return filepath.Join(dir, name+suffix+"."+ext)
}

// atomicWrite streams content into a temp file next to the final path and
// renames it into place once fn succeeds.
func atomicWrite(final string, fn func(*os.File) error) error {
	dir := filepath.Dir(final)
	tmp := filepath.Join(dir, "."+filepath.Base(final)+"."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to finalize %s: %w", final, err)
	}
	return nil
}
