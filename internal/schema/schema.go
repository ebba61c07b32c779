// Package schema infers a tabular schema from a sample of JSON records.
//
// The analyzer walks each sampled record and merges what it sees into a
// tree of field nodes: one node per dot-joined path, carrying the field's
// structural kind, the set of scalar types observed across records, and its
// children for object-like kinds. The resulting Tree is read-only for the
// rest of a pipeline run and drives mode previews, table naming, and the
// explode/relational branch logic.
package schema

import (
	"fmt"
	"strings"

	"github.com/vegasq/tablify/internal/value"
)

// Node describes one field path observed in the sampled records.
type Node struct {
	// Name is the final path segment.
	Name string
	// Path is the full dot-joined path from the record root.
	Path string
	// Class is the field's structural kind. When conflicting kinds were
	// observed across records the node is coerced to ClassScalar and
	// Coerced is set.
	Class value.Class
	// Types holds the scalar type tags seen for this path, in first-seen
	// order.
	Types []string
	// Depth is the nesting depth of the field, with record-root fields at
	// depth zero.
	Depth int
	// Children is populated for object and array-of-object nodes, in
	// first-seen field order.
	Children []*Node
	// Coerced marks a node degraded to scalar-as-text after a kind
	// conflict.
	Coerced bool
	// ItemCount is the largest array length observed, for array kinds.
	// Previews use it to estimate exploded row counts.
	ItemCount int

	childIndex map[string]*Node
}

// Child returns the named child node, or nil.
func (n *Node) Child(name string) *Node {
	if n.childIndex == nil {
		return nil
	}
	return n.childIndex[name]
}

func (n *Node) child(name string, depth int) *Node {
	if c := n.Child(name); c != nil {
		return c
	}
	path := name
	if n.Path != "" {
		path = n.Path + "." + name
	}
	c := &Node{Name: name, Path: path, Depth: depth}
	if n.childIndex == nil {
		n.childIndex = make(map[string]*Node)
	}
	n.childIndex[name] = c
	n.Children = append(n.Children, c)
	return c
}

// Tree is the inferred schema for one input: the record-root fields plus
// derived metadata.
type Tree struct {
	// Fields are the top-level record fields in first-seen order.
	Fields []*Node
	// RecordCount is the number of records known to exist. For streamed
	// inputs only the sampled prefix is known, so this is a lower bound.
	RecordCount int
	// CountExact reports whether RecordCount covers the full input.
	CountExact bool
	// SampleSize is the number of records the analysis actually walked.
	SampleSize int
	// MaxDepth is the deepest nesting level reached.
	MaxDepth int
	// SourceBytes is the input size, when known.
	SourceBytes int64

	root Node
}

// BranchPoints returns every array-of-object node in the tree, in
// depth-first field order. These are the paths that multiply rows in
// EXPLODE mode and become child tables in RELATIONAL mode.
func (t *Tree) BranchPoints() []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.Class == value.ClassArrayOfObject {
				out = append(out, n)
			}
			walk(n.Children)
		}
	}
	walk(t.Fields)
	return out
}

// IsNested reports whether any field holds structure below depth zero.
func (t *Tree) IsNested() bool { return t.MaxDepth > 0 }

// Field returns the node for a dot-joined path, or nil.
func (t *Tree) Field(path string) *Node {
	segs := strings.Split(path, ".")
	nodes := t.Fields
	var found *Node
	for _, seg := range segs {
		found = nil
		for _, n := range nodes {
			if n.Name == seg {
				found = n
				break
			}
		}
		if found == nil {
			return nil
		}
		nodes = found.Children
	}
	return found
}

// StructureError reports a record that cannot participate in tabular
// conversion: the top-level iterable must contain JSON objects.
type StructureError struct {
	Index int
	Kind  value.Kind
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("record %d is not a JSON object (got %s)", e.Index, e.Kind)
}
