package transform

import (
	"strings"

	"github.com/vegasq/tablify/internal/schema"
	"github.com/vegasq/tablify/internal/value"
)

// Explode emits one row per combination of nested array-of-object elements.
// Independent array fields multiply as a Cartesian product, with the
// record's scalar fields duplicated across every resulting row. Arrays of
// objects nested inside elements recurse with the same rule before
// combining with sibling arrays.
type Explode struct {
	table   *Table
	coerced map[string]bool
}

func newExplode(tree *schema.Tree, baseName string) *Explode {
	return &Explode{table: NewTable(baseName), coerced: coercedPaths(tree)}
}

// Mode returns ModeExplode.
func (e *Explode) Mode() Mode { return ModeExplode }

// Add converts one record into its exploded rows. A record with no
// array-of-object fields yields exactly one row; empty arrays yield one row
// with the array's columns empty, so parent data is never dropped.
func (e *Explode) Add(rec value.Value) error {
	for _, row := range e.explode(rec, "") {
		e.table.Append(row)
	}
	return nil
}

// Tables returns the single output table.
func (e *Explode) Tables() []*Table { return []*Table{e.table} }

type pendingArray struct {
	path  string
	elems []value.Value
}

func (e *Explode) explode(rec value.Value, prefix string) []Row {
	if rec.Kind != value.KindObject {
		// tolerated degenerate: a scalar element inside a mixed array keeps
		// its value under the array's own column
		row := Row{}
		e.table.set(row, strings.TrimSuffix(prefix, "."), rec.Text())
		return []Row{row}
	}

	flat := Row{}
	var arrays []pendingArray

	for _, m := range rec.Members {
		path := prefix + m.Key
		if e.coerced[path] {
			e.table.set(flat, path, m.Value.Text())
			continue
		}
		switch value.Classify(m.Value) {
		case value.ClassObject:
			flattenInto(e.table, flat, m.Value, path+".", e.coerced)
		case value.ClassArrayOfObject:
			arrays = append(arrays, pendingArray{path: path, elems: m.Value.Elems})
		case value.ClassArrayOfScalar:
			// empty arrays land here too, leaving a single empty cell
			e.table.set(flat, path, joinScalars(m.Value.Elems))
		default:
			e.table.set(flat, path, m.Value.Text())
		}
	}

	if len(arrays) == 0 {
		return []Row{flat}
	}

	// explode arrays one by one; each pass crosses the rows accumulated so
	// far with the current array's (recursively exploded) elements
	rows := []Row{flat}
	for _, arr := range arrays {
		var next []Row
		for _, base := range rows {
			for _, el := range arr.elems {
				for _, exploded := range e.explode(el, arr.path+".") {
					merged := make(Row, len(base)+len(exploded))
					for k, v := range base {
						merged[k] = v
					}
					for k, v := range exploded {
						merged[k] = v
					}
					next = append(next, merged)
				}
			}
		}
		rows = next
	}
	return rows
}
