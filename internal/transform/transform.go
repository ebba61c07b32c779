// Package transform converts JSON records into tabular rows under one of
// three denormalization modes.
//
// FLAT emits one row per record with nested structure serialized as JSON
// text. EXPLODE multiplies rows across array-of-object fields via
// Cartesian product. RELATIONAL splits each array-of-object path into its
// own table linked to the parent by a synthetic key.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vegasq/tablify/internal/schema"
	"github.com/vegasq/tablify/internal/value"
)

// Mode selects the denormalization strategy.
type Mode int

const (
	ModeFlat Mode = iota + 1
	ModeExplode
	ModeRelational
)

// String returns the mode's display name.
func (m Mode) String() string {
	switch m {
	case ModeFlat:
		return "FLAT"
	case ModeExplode:
		return "EXPLODE"
	case ModeRelational:
		return "RELATIONAL"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode resolves a mode from its number or name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "flat":
		return ModeFlat, nil
	case "2", "explode":
		return ModeExplode, nil
	case "3", "relational":
		return ModeRelational, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (expected 1/flat, 2/explode or 3/relational)", s)
	}
}

// Row maps column names to text cell values. A column absent from the row
// is a null cell; an empty string is an empty (but present) value. Both
// render as empty CSV fields.
type Row map[string]string

// Table is a named, ordered sequence of rows sharing one column set.
// Columns appear in first-registration order, which the converters drive
// from source field order.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row

	colSeen map[string]bool
}

// NewTable returns an empty table.
func NewTable(name string) *Table {
	return &Table{Name: name, colSeen: make(map[string]bool)}
}

// AddColumn registers a column, keeping first-registration order.
// Idempotent.
func (t *Table) AddColumn(name string) {
	if t.colSeen == nil {
		t.colSeen = make(map[string]bool)
	}
	if !t.colSeen[name] {
		t.colSeen[name] = true
		t.Columns = append(t.Columns, name)
	}
}

// Append adds a row. The caller is responsible for having registered the
// row's columns.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// set stores a cell and registers its column in encounter order.
func (t *Table) set(row Row, col, val string) {
	t.AddColumn(col)
	row[col] = val
}

// Transformer consumes one record at a time and accumulates output tables.
// FLAT and EXPLODE produce exactly one table; RELATIONAL produces a root
// table plus one per branch point.
type Transformer interface {
	Mode() Mode
	Add(rec value.Value) error
	Tables() []*Table
}

// InvariantError reports a broken internal contract, such as invoking a
// transformer without a computed schema tree. It should not be reachable
// through the public pipeline.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "transform invariant violated: " + e.Msg }

// New builds the transformer for a mode. baseName names the single output
// table (FLAT/EXPLODE) or the root table (RELATIONAL).
func New(mode Mode, tree *schema.Tree, baseName string) (Transformer, error) {
	if tree == nil {
		return nil, &InvariantError{Msg: "no schema tree computed"}
	}
	if baseName == "" {
		baseName = "output"
	}
	switch mode {
	case ModeFlat:
		return newFlat(baseName), nil
	case ModeExplode:
		return newExplode(tree, baseName), nil
	case ModeRelational:
		return newRelational(tree, baseName), nil
	default:
		return nil, fmt.Errorf("unknown mode %d", int(mode))
	}
}

// coercedPaths collects the dot paths the analyzer degraded to
// scalar-as-text after a kind conflict. The converters consult the set so
// a conflicting field renders as text for every record, not just the
// records where it happens to hold a scalar.
func coercedPaths(tree *schema.Tree) map[string]bool {
	out := make(map[string]bool)
	var walk func(nodes []*schema.Node)
	walk = func(nodes []*schema.Node) {
		for _, n := range nodes {
			if n.Coerced {
				out[n.Path] = true
			}
			walk(n.Children)
		}
	}
	walk(tree.Fields)
	return out
}

// joinScalars renders an array-of-scalar value as a pipe-separated string,
// the EXPLODE/RELATIONAL treatment of primitive arrays. Non-scalar
// stragglers fall back to JSON text.
func joinScalars(elems []value.Value) string {
	if len(elems) == 0 {
		return ""
	}
	parts := make([]string, len(elems))
	for i, el := range elems {
		if el.IsScalar() {
			parts[i] = el.Text()
		} else {
			parts[i] = el.JSON()
		}
	}
	return strings.Join(parts, "|")
}

// flattenInto flattens a nested object into dot-notation columns of row.
// Arrays inside the object are not expanded further: object elements keep
// their JSON text, scalar elements are pipe-joined. Paths in coerced
// render as text whatever shape this record holds.
func flattenInto(t *Table, row Row, obj value.Value, prefix string, coerced map[string]bool) {
	for _, m := range obj.Members {
		col := prefix + m.Key
		if coerced[col] {
			t.set(row, col, m.Value.Text())
			continue
		}
		switch value.Classify(m.Value) {
		case value.ClassObject:
			flattenInto(t, row, m.Value, col+".", coerced)
		case value.ClassArrayOfObject:
			t.set(row, col, m.Value.JSON())
		case value.ClassArrayOfScalar:
			t.set(row, col, joinScalars(m.Value.Elems))
		default:
			t.set(row, col, m.Value.Text())
		}
	}
}

// positionalKey is the synthetic-key fallback when a record carries no
// identifying field: its one-based position within its parent sequence.
func positionalKey(ordinal int) string {
	return strconv.Itoa(ordinal + 1)
}
