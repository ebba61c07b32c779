// Package extract locates and yields the record iterable of a JSON
// document.
//
// Three input shapes are supported: a root array of record objects, an
// object wrapping one array of record objects (found by a document-order
// scan that also honors conventional wrapper keys like "data" and
// "records"), and a single object treated as one record.
//
// Two strategies implement the same Extractor contract. Bulk parses the
// whole document up front; Stream walks the token stream and yields each
// record as soon as its closing boundary is read, keeping memory bounded by
// a single record. For any input both strategies yield the identical
// ordered record sequence.
package extract

import (
	"fmt"
	"os"

	"github.com/vegasq/tablify/internal/schema"
	"github.com/vegasq/tablify/internal/value"
)

// DefaultLargeFileThreshold is the input size above which Open switches
// from bulk to streaming extraction.
const DefaultLargeFileThreshold = 500 << 20 // 500 MB

// Extractor yields the document's records in order. Next returns io.EOF
// after the last record. The sequence is forward-only; restarting requires
// re-opening the source.
type Extractor interface {
	Next() (value.Value, error)
	Close() error
}

// Counter is implemented by extractors that know the total record count up
// front (the bulk strategy).
type Counter interface {
	Len() int
}

// ExtractionError reports that no qualifying record iterable was found in
// the document.
type ExtractionError struct {
	Msg string
}

func (e *ExtractionError) Error() string { return e.Msg }

// wrapperKeys are conventional envelope names whose array values are taken
// as the record iterable even when empty.
var wrapperKeys = map[string]bool{
	"data":    true,
	"records": true,
	"results": true,
	"items":   true,
	"rows":    true,
}

// Open stats the file and picks the extraction strategy: streaming when the
// size exceeds threshold (<=0 means the default), bulk otherwise. The
// returned size is the input length in bytes.
func Open(path string, threshold int64) (Extractor, int64, error) {
	if threshold <= 0 {
		threshold = DefaultLargeFileThreshold
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to stat input: %w", err)
	}
	size := stat.Size()

	if size > threshold {
		ex, err := NewStream(f)
		if err != nil {
			_ = f.Close()
			return nil, size, err
		}
		return ex, size, nil
	}

	ex, err := NewBulk(f)
	closeErr := f.Close()
	if err != nil {
		return nil, size, err
	}
	if closeErr != nil {
		return nil, size, fmt.Errorf("failed to close input: %w", closeErr)
	}
	return ex, size, nil
}

// qualifies reports whether an already-parsed array value is the record
// iterable: its first element is an object, or the wrapping key is a
// conventional envelope name.
func qualifies(key string, arr value.Value) bool {
	if len(arr.Elems) > 0 && arr.Elems[0].Kind == value.KindObject {
		return true
	}
	return wrapperKeys[key]
}

// checkRecord enforces that the iterable's elements are objects. The first
// element is vetted during location, so a violation here surfaces as a
// StructureError carrying the record index.
func checkRecord(v value.Value, index int) error {
	if v.Kind != value.KindObject {
		return &schema.StructureError{Index: index, Kind: v.Kind}
	}
	return nil
}
