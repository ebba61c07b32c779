package transform

import (
	"strconv"
	"strings"
)

// Deduplicate removes rows that are exact duplicates across every column,
// preserving first-occurrence order, and returns the number of rows
// removed. Rows are compared through a serialized key over the table's
// column set (null and empty cells serialize differently; present cells
// are length-prefixed so no cell content can collide with the framing),
// so the pass is near-linear in row count.
//
// Scaling boundary: the set of distinct serialized rows is held in memory,
// so peak usage is proportional to distinct rows times row width. For
// output tables beyond that budget a disk-backed pass would be needed;
// that is out of scope for now.
func Deduplicate(t *Table) int {
	if len(t.Rows) < 2 {
		return 0
	}
	seen := make(map[string]struct{}, len(t.Rows))
	kept := t.Rows[:0]
	var sb strings.Builder
	for _, row := range t.Rows {
		sb.Reset()
		rowKey(&sb, t.Columns, row)
		key := sb.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}

func rowKey(sb *strings.Builder, columns []string, row Row) {
	for _, col := range columns {
		v, ok := row[col]
		if !ok {
			sb.WriteByte(0)
			continue
		}
		sb.WriteByte(1)
		sb.WriteString(strconv.Itoa(len(v)))
		sb.WriteByte(':')
		sb.WriteString(v)
	}
}
