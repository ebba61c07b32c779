package schema

import (
	"strings"

	"github.com/vegasq/tablify/internal/value"
)

// DefaultSampleSize is how many records the analyzer walks when the caller
// does not say otherwise. Structure is assumed homogeneous enough that a
// small prefix is representative; fields seen only later degrade gracefully
// because every converter also handles unknown paths per record.
const DefaultSampleSize = 5

// Reporter receives non-fatal findings from the analyzer and the pipeline.
// The core carries no global logger; callers inject whatever sink suits
// them (the CLI prints, tests capture).
type Reporter interface {
	Warnf(format string, args ...interface{})
}

type nopReporter struct{}

func (nopReporter) Warnf(string, ...interface{}) {}

// Discard is a Reporter that drops everything.
var Discard Reporter = nopReporter{}

// Analyzer builds a Tree from sampled records.
type Analyzer struct {
	SampleSize int
	Reporter   Reporter
}

// NewAnalyzer returns an analyzer with the default sample size reporting
// through r. A nil reporter discards warnings.
func NewAnalyzer(r Reporter) *Analyzer {
	if r == nil {
		r = Discard
	}
	return &Analyzer{SampleSize: DefaultSampleSize, Reporter: r}
}

// Analyze walks up to SampleSize of the given records and merges their
// structure into a Tree. totalRecords is the full record count when the
// caller knows it (bulk extraction), or negative when only the sample is
// known (streaming). A sampled record that is not a JSON object is a
// StructureError.
func (a *Analyzer) Analyze(records []value.Value, totalRecords int, sourceBytes int64) (*Tree, error) {
	sample := records
	limit := a.SampleSize
	if limit <= 0 {
		limit = DefaultSampleSize
	}
	if len(sample) > limit {
		sample = sample[:limit]
	}

	tree := &Tree{SourceBytes: sourceBytes, SampleSize: len(sample)}
	if totalRecords >= 0 {
		tree.RecordCount = totalRecords
		tree.CountExact = true
	} else {
		tree.RecordCount = len(records)
	}

	for i, rec := range sample {
		if rec.Kind != value.KindObject {
			return nil, &StructureError{Index: i, Kind: rec.Kind}
		}
		a.mergeObject(&tree.root, rec, 0, tree)
	}
	tree.Fields = tree.root.Children
	if len(sample) == 0 {
		a.Reporter.Warnf("no records found; schema is empty")
	}
	return tree, nil
}

func (a *Analyzer) mergeObject(parent *Node, obj value.Value, depth int, tree *Tree) {
	if depth > tree.MaxDepth {
		tree.MaxDepth = depth
	}
	for _, m := range obj.Members {
		node := parent.child(m.Key, depth)
		a.mergeValue(node, m.Value, depth, tree)
	}
}

func (a *Analyzer) mergeValue(node *Node, v value.Value, depth int, tree *Tree) {
	class := value.Classify(v)
	if len(node.Types) == 0 && len(node.Children) == 0 && !node.Coerced {
		// first observation fixes the node's kind
		node.Class = class
	} else if node.Class != class && !node.Coerced {
		// conflicting kinds degrade the field to scalar-as-text, the most
		// permissive representation; processing continues
		a.Reporter.Warnf("field %q has conflicting kinds across records (%s vs %s); treating as text",
			node.Path, node.Class, class)
		node.Coerced = true
		node.Class = value.ClassScalar
	}

	switch class {
	case value.ClassScalar:
		node.addType(scalarTag(v))
	case value.ClassObject:
		a.mergeObject(node, v, depth+1, tree)
	case value.ClassArrayOfScalar:
		node.addType("array")
		if len(v.Elems) > node.ItemCount {
			node.ItemCount = len(v.Elems)
		}
	case value.ClassArrayOfObject:
		if len(v.Elems) > node.ItemCount {
			node.ItemCount = len(v.Elems)
		}
		for _, el := range v.Elems {
			if el.Kind == value.KindObject {
				a.mergeObject(node, el, depth+1, tree)
			}
		}
	}
}

func (n *Node) addType(tag string) {
	for _, t := range n.Types {
		if t == tag {
			return
		}
	}
	n.Types = append(n.Types, tag)
}

// scalarTag names the observed scalar type, distinguishing integers from
// other numbers the way the structure report presents them.
func scalarTag(v value.Value) string {
	if v.Kind == value.KindNumber {
		s := v.Num.String()
		if !strings.ContainsAny(s, ".eE") {
			return "integer"
		}
		return "number"
	}
	return v.Kind.String()
}
