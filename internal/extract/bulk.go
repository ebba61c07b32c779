package extract

import (
	"io"

	"github.com/vegasq/tablify/internal/value"
)

// Bulk holds the fully parsed document's records in memory.
type Bulk struct {
	records []value.Value
	pos     int
}

// NewBulk parses the whole document from r and locates its record
// iterable.
func NewBulk(r io.Reader) (*Bulk, error) {
	doc, err := value.Parse(r)
	if err != nil {
		return nil, err
	}
	records, err := Locate(doc)
	if err != nil {
		return nil, err
	}
	return &Bulk{records: records}, nil
}

// Locate finds the record iterable in a parsed document. The scan order
// matches the streaming extractor's token walk exactly: root arrays are
// taken as-is, root objects are scanned depth-first in member order for the
// first qualifying array, and an object with no such array is itself the
// single record.
func Locate(doc value.Value) ([]value.Value, error) {
	switch doc.Kind {
	case value.KindArray:
		if len(doc.Elems) == 0 {
			return nil, nil
		}
		if doc.Elems[0].Kind != value.KindObject {
			return nil, &ExtractionError{Msg: "root array does not contain objects"}
		}
		return doc.Elems, nil
	case value.KindObject:
		if records, found := findRecords(doc); found {
			return records, nil
		}
		// no qualifying array anywhere: the object itself is one record
		return []value.Value{doc}, nil
	default:
		return nil, &ExtractionError{Msg: "document is not an array or object of records"}
	}
}

func findRecords(obj value.Value) ([]value.Value, bool) {
	for _, m := range obj.Members {
		switch m.Value.Kind {
		case value.KindArray:
			if qualifies(m.Key, m.Value) {
				return m.Value.Elems, true
			}
		case value.KindObject:
			if records, found := findRecords(m.Value); found {
				return records, true
			}
		}
	}
	return nil, false
}

// Next returns the next record, or io.EOF.
func (b *Bulk) Next() (value.Value, error) {
	if b.pos >= len(b.records) {
		return value.Value{}, io.EOF
	}
	rec := b.records[b.pos]
	if err := checkRecord(rec, b.pos); err != nil {
		return value.Value{}, err
	}
	b.pos++
	return rec, nil
}

// Len returns the total record count.
func (b *Bulk) Len() int { return len(b.records) }

// Close releases nothing; the bulk strategy owns no handle.
func (b *Bulk) Close() error { return nil }
