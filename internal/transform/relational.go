package transform

import (
	"strings"

	"github.com/vegasq/tablify/internal/schema"
	"github.com/vegasq/tablify/internal/value"
)

// idCandidates is the priority order for detecting a record's identifying
// field. Exact matches win over the generic suffix check.
var idCandidates = []string{
	"id", "_id", "ID", "Id",
	"employee_id", "employeeId",
	"user_id", "userId",
	"project_id", "projectId",
	"task_id", "taskId",
	"order_id", "orderId",
	"item_id", "itemId",
}

// findIDField returns the record's identifying field name, or "" when none
// qualifies and the positional fallback applies.
func findIDField(rec value.Value) string {
	names := make([]string, 0, len(rec.Members))
	for _, m := range rec.Members {
		if m.Value.IsScalar() {
			names = append(names, m.Key)
		}
	}
	return DetectIDField(names)
}

// DetectIDField picks the most likely identifying field from a set of
// scalar field names: exact candidates first, then any short name ending in
// "id". Returns "" when nothing qualifies.
func DetectIDField(names []string) string {
	for _, cand := range idCandidates {
		for _, n := range names {
			if n == cand {
				return n
			}
		}
	}
	for _, n := range names {
		if strings.HasSuffix(strings.ToLower(n), "id") && len(n) <= 20 {
			return n
		}
	}
	return ""
}

// Relational normalizes records into a root table plus one table per
// array-of-object path, linked by synthetic keys. The root table keeps the
// pipeline's base name; child tables take their path's last segment, or the
// full dot-joined path when two branch points share a segment.
type Relational struct {
	base    string
	tables  map[string]*Table
	order   []string
	names   map[string]string // branch path -> table name
	coerced map[string]bool
	count   int // records processed, for the positional key
}

func newRelational(tree *schema.Tree, baseName string) *Relational {
	r := &Relational{
		base:    baseName,
		tables:  make(map[string]*Table),
		coerced: coercedPaths(tree),
	}
	r.table(baseName)
	r.names = ChildTableNames(tree)
	return r
}

// ChildTableNames assigns output table names to the tree's branch points:
// the path's last segment, or the full dot-joined path when two branch
// points share a segment. Pre-assigning from the sampled tree keeps the
// disambiguation consistent no matter which record is seen first.
func ChildTableNames(tree *schema.Tree) map[string]string {
	names := make(map[string]string)
	segs := make(map[string]int)
	branches := tree.BranchPoints()
	for _, b := range branches {
		segs[b.Name]++
	}
	for _, b := range branches {
		if segs[b.Name] > 1 {
			names[b.Path] = b.Path
		} else {
			names[b.Path] = b.Name
		}
	}
	return names
}

// Mode returns ModeRelational.
func (r *Relational) Mode() Mode { return ModeRelational }

func (r *Relational) table(name string) *Table {
	if t, ok := r.tables[name]; ok {
		return t
	}
	t := NewTable(name)
	r.tables[name] = t
	r.order = append(r.order, name)
	return t
}

// tableNameFor resolves the output table for a branch path, falling back to
// the same last-segment rule for paths the sample never showed.
func (r *Relational) tableNameFor(path string) string {
	if name, ok := r.names[path]; ok {
		return name
	}
	seg := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		seg = path[i+1:]
	}
	name := seg
	for p, n := range r.names {
		if n == seg && p != path {
			name = path
			break
		}
	}
	r.names[path] = name
	return name
}

// Add processes one record: one row in the root table plus, recursively,
// one row per nested array element in that path's child table.
func (r *Relational) Add(rec value.Value) error {
	err := r.process(rec, r.base, "", "", "", r.count)
	r.count++
	return err
}

// process emits the row for one object into tableName and recurses into its
// array-of-object members. fkCol/fkVal carry the parent link for child
// tables; ordinal is the object's position in its parent sequence, used as
// the synthetic key fallback.
func (r *Relational) process(rec value.Value, tableName, pathPrefix, fkCol, fkVal string, ordinal int) error {
	t := r.table(tableName)

	idField := findIDField(rec)
	keyField := idField
	keyVal := ""
	if idField != "" {
		v, _ := rec.Member(idField)
		keyVal = v.Text()
	} else {
		keyField = "id"
		keyVal = positionalKey(ordinal)
	}

	row := Row{}
	if fkCol != "" {
		// the parent link is registered first so it leads the column set
		t.set(row, fkCol, fkVal)
	}
	if idField == "" {
		// the positional key has no source field, so it is materialized
		// here; child FK values must resolve to a parent column
		t.set(row, keyField, keyVal)
	}

	if err := r.flattenRecord(t, row, rec, "", pathPrefix, tableName, keyField, keyVal); err != nil {
		return err
	}

	t.Append(row)
	return nil
}

// flattenRecord fills row with an object's non-branch fields (nested
// objects dot-flattened, scalar arrays pipe-joined) and routes every
// array-of-object member, at any depth, into its child table.
func (r *Relational) flattenRecord(t *Table, row Row, obj value.Value, colPrefix, pathPrefix, tableName, keyField, keyVal string) error {
	for _, m := range obj.Members {
		col := colPrefix + m.Key
		path := pathPrefix + m.Key
		if r.coerced[path] {
			t.set(row, col, m.Value.Text())
			continue
		}
		switch value.Classify(m.Value) {
		case value.ClassObject:
			if err := r.flattenRecord(t, row, m.Value, col+".", path+".", tableName, keyField, keyVal); err != nil {
				return err
			}
		case value.ClassArrayOfObject:
			if err := r.emitChildren(path, tableName, keyField, keyVal, m.Value.Elems); err != nil {
				return err
			}
		case value.ClassArrayOfScalar:
			t.set(row, col, joinScalars(m.Value.Elems))
		default:
			t.set(row, col, m.Value.Text())
		}
	}
	return nil
}

// emitChildren writes one child-table row per array element, linked to the
// parent through its synthetic key.
func (r *Relational) emitChildren(path, parentTable, keyField, keyVal string, elems []value.Value) error {
	childTable := r.tableNameFor(path)
	childFK := parentTable + "_" + keyField
	for i, el := range elems {
		if el.Kind != value.KindObject {
			// mixed array straggler: keep the value, keep the link
			ct := r.table(childTable)
			crow := Row{}
			ct.set(crow, childFK, keyVal)
			ct.set(crow, "value", el.Text())
			ct.Append(crow)
			continue
		}
		if err := r.process(el, childTable, path+".", childFK, keyVal, i); err != nil {
			return err
		}
	}
	return nil
}

// Tables returns the root table followed by child tables in first-seen
// order.
func (r *Relational) Tables() []*Table {
	out := make([]*Table, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tables[name])
	}
	return out
}
