// Package preview produces read-only reports about an input's inferred
// structure and what each conversion mode would output. Nothing in this
// package writes a file; the interactive prompt and the preview subcommand
// are its consumers.
package preview

import (
	"github.com/vegasq/tablify/internal/schema"
	"github.com/vegasq/tablify/internal/transform"
	"github.com/vegasq/tablify/internal/value"
)

// TableDescriptor describes one output table a mode would produce, without
// running the transformation.
type TableDescriptor struct {
	Name          string
	Columns       []string
	EstimatedRows int
}

// Describe returns the output tables for a mode, derived purely from the
// schema tree. Row estimates extrapolate from sampled array lengths; for
// streamed inputs they are lower bounds.
func Describe(tree *schema.Tree, mode transform.Mode, baseName string) []TableDescriptor {
	if baseName == "" {
		baseName = "output"
	}
	switch mode {
	case transform.ModeFlat:
		return []TableDescriptor{flatDescriptor(tree, baseName)}
	case transform.ModeExplode:
		return []TableDescriptor{explodeDescriptor(tree, baseName)}
	case transform.ModeRelational:
		return relationalDescriptors(tree, baseName)
	default:
		return nil
	}
}

func flatDescriptor(tree *schema.Tree, baseName string) TableDescriptor {
	d := TableDescriptor{Name: baseName, EstimatedRows: tree.RecordCount}
	for _, f := range tree.Fields {
		d.Columns = append(d.Columns, f.Name)
	}
	return d
}

func explodeDescriptor(tree *schema.Tree, baseName string) TableDescriptor {
	d := TableDescriptor{Name: baseName}
	d.Columns = explodeColumns(tree.Fields, "")

	multiplier := 1
	for _, b := range tree.BranchPoints() {
		if b.ItemCount > 1 {
			multiplier *= b.ItemCount
		}
	}
	d.EstimatedRows = tree.RecordCount * multiplier
	return d
}

func explodeColumns(nodes []*schema.Node, prefix string) []string {
	var cols []string
	for _, n := range nodes {
		path := prefix + n.Name
		switch n.Class {
		case value.ClassObject, value.ClassArrayOfObject:
			cols = append(cols, explodeColumns(n.Children, path+".")...)
		default:
			cols = append(cols, path)
		}
	}
	return cols
}

func relationalDescriptors(tree *schema.Tree, baseName string) []TableDescriptor {
	root := TableDescriptor{Name: baseName, EstimatedRows: tree.RecordCount}
	for _, f := range tree.Fields {
		switch f.Class {
		case value.ClassObject:
			root.Columns = append(root.Columns, objectLeafColumns(f.Children, f.Name+".")...)
		case value.ClassArrayOfObject:
			// becomes its own table
		default:
			root.Columns = append(root.Columns, f.Name)
		}
	}
	out := []TableDescriptor{root}

	names := transform.ChildTableNames(tree)
	for _, b := range tree.BranchPoints() {
		// the owning record is the nearest enclosing branch element, or
		// the root record for branches reached only through plain objects
		parent := baseName
		parentFields := tree.Fields
		if owner := owningBranch(tree, b.Path); owner != nil {
			parent = names[owner.Path]
			parentFields = owner.Children
		}
		child := TableDescriptor{
			Name:          names[b.Path],
			EstimatedRows: tree.RecordCount * maxInt(b.ItemCount, 1),
		}
		child.Columns = append(child.Columns, parent+"_"+keyFieldName(parentFields))
		for _, f := range b.Children {
			switch f.Class {
			case value.ClassObject:
				child.Columns = append(child.Columns, objectLeafColumns(f.Children, f.Name+".")...)
			case value.ClassArrayOfObject:
				// nested branch, its own table
			default:
				child.Columns = append(child.Columns, f.Name)
			}
		}
		out = append(out, child)
	}
	return out
}

func objectLeafColumns(nodes []*schema.Node, prefix string) []string {
	var cols []string
	for _, n := range nodes {
		path := prefix + n.Name
		switch n.Class {
		case value.ClassObject:
			cols = append(cols, objectLeafColumns(n.Children, path+".")...)
		case value.ClassArrayOfObject:
			// becomes its own table at any depth
		default:
			cols = append(cols, path)
		}
	}
	return cols
}

// owningBranch returns the deepest branch node whose elements contain the
// given path, or nil when the path hangs off the root record.
func owningBranch(tree *schema.Tree, path string) *schema.Node {
	for i := lastDot(path); i >= 0; i = lastDot(path[:i]) {
		if n := tree.Field(path[:i]); n != nil && n.Class == value.ClassArrayOfObject {
			return n
		}
	}
	return nil
}

// keyFieldName guesses the identifying field a table's rows carry, using
// the same detection the relational converter applies per record. "id" also
// names the positional-key fallback column.
func keyFieldName(fields []*schema.Node) string {
	var names []string
	for _, f := range fields {
		if f.Class == value.ClassScalar {
			names = append(names, f.Name)
		}
	}
	if k := transform.DetectIDField(names); k != "" {
		return k
	}
	return "id"
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// SampleTables runs one record through a mode and returns the resulting
// tables, for rendering example output in the interactive prompt.
func SampleTables(rec value.Value, tree *schema.Tree, mode transform.Mode, baseName string) ([]*transform.Table, error) {
	tr, err := transform.New(mode, tree, baseName)
	if err != nil {
		return nil, err
	}
	if err := tr.Add(rec); err != nil {
		return nil, err
	}
	return tr.Tables(), nil
}
