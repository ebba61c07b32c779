package transform

import (
	"github.com/vegasq/tablify/internal/value"
)

// Flat emits exactly one row per record. Depth-one scalar fields map
// straight to columns; objects and arrays are serialized as their JSON text
// in a single column, so no structure below depth one is expanded and no
// rows multiply.
type Flat struct {
	table *Table
}

func newFlat(baseName string) *Flat {
	return &Flat{table: NewTable(baseName)}
}

// Mode returns ModeFlat.
func (f *Flat) Mode() Mode { return ModeFlat }

// Add converts one record into one row.
func (f *Flat) Add(rec value.Value) error {
	row := Row{}
	for _, m := range rec.Members {
		switch value.Classify(m.Value) {
		case value.ClassScalar:
			f.table.set(row, m.Key, m.Value.Text())
		default:
			// objects and arrays travel verbatim as JSON text
			f.table.set(row, m.Key, m.Value.JSON())
		}
	}
	f.table.Append(row)
	return nil
}

// Tables returns the single output table.
func (f *Flat) Tables() []*Table { return []*Table{f.table} }
