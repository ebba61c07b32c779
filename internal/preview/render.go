package preview

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/tablify/internal/schema"
	"github.com/vegasq/tablify/internal/transform"
	"github.com/vegasq/tablify/internal/value"
)

// RenderTree draws the schema tree as ASCII, one field per line with its
// kind annotation.
func RenderTree(tree *schema.Tree) string {
	var sb strings.Builder
	for i, f := range tree.Fields {
		renderNode(&sb, f, "", i == len(tree.Fields)-1)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderNode(sb *strings.Builder, n *schema.Node, prefix string, isLast bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	sb.WriteString(prefix)
	sb.WriteString(connector)
	sb.WriteString(n.Name)
	sb.WriteString(kindLabel(n))
	sb.WriteByte('\n')

	childPrefix := prefix + "│   "
	if isLast {
		childPrefix = prefix + "    "
	}
	for i, c := range n.Children {
		renderNode(sb, c, childPrefix, i == len(n.Children)-1)
	}
}

func kindLabel(n *schema.Node) string {
	switch n.Class {
	case value.ClassArrayOfObject:
		return fmt.Sprintf(" (array of objects, ~%d items)", n.ItemCount)
	case value.ClassArrayOfScalar:
		return fmt.Sprintf(" (array, ~%d items)", n.ItemCount)
	case value.ClassObject:
		return " (object)"
	default:
		if len(n.Types) > 0 {
			return " (" + strings.Join(n.Types, "|") + ")"
		}
		return " (scalar)"
	}
}

const (
	sampleMaxColumns = 4
	sampleCellWidth  = 15
)

// RenderSample renders a table's rows as an ASCII table for the
// interactive prompt, truncated to the first few columns and rows.
func RenderSample(t *transform.Table, maxRows int) string {
	if len(t.Columns) == 0 {
		return "(no columns)"
	}
	cols := t.Columns
	truncatedCols := false
	if len(cols) > sampleMaxColumns {
		cols = cols[:sampleMaxColumns]
		truncatedCols = true
	}

	header := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		header = append(header, truncate(c, sampleCellWidth))
	}
	if truncatedCols {
		header = append(header, "...")
	}

	var sb strings.Builder
	tw := tablewriter.NewWriter(&sb)
	tw.SetHeader(header)
	for i, row := range t.Rows {
		if maxRows > 0 && i >= maxRows {
			break
		}
		cells := make([]string, 0, len(header))
		for _, c := range cols {
			cells = append(cells, truncate(row[c], sampleCellWidth))
		}
		if truncatedCols {
			cells = append(cells, "...")
		}
		tw.Append(cells)
	}
	tw.Render()
	return sb.String()
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
