package transform

import (
	"strings"
	"testing"

	"github.com/vegasq/tablify/internal/schema"
	"github.com/vegasq/tablify/internal/value"
)

func mustParse(t *testing.T, doc string) value.Value {
	t.Helper()
	v, err := value.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return v
}

func buildTree(t *testing.T, records []value.Value) *schema.Tree {
	t.Helper()
	a := schema.NewAnalyzer(nil)
	a.SampleSize = len(records) + 1
	tree, err := a.Analyze(records, len(records), 0)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return tree
}

func runMode(t *testing.T, mode Mode, base string, docs ...string) []*Table {
	t.Helper()
	records := make([]value.Value, len(docs))
	for i, d := range docs {
		records[i] = mustParse(t, d)
	}
	tr, err := New(mode, buildTree(t, records), base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, rec := range records {
		if err := tr.Add(rec); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	return tr.Tables()
}

func TestNew_RequiresSchemaTree(t *testing.T) {
	_, err := New(ModeFlat, nil, "x")
	if _, ok := err.(*InvariantError); !ok {
		t.Fatalf("New(nil tree) error = %v, want *InvariantError", err)
	}
}

func TestFlat_OneRowPerRecord(t *testing.T) {
	tables := runMode(t, ModeFlat, "employees",
		`{"id":"E001","name":"John","projects":[{"projectId":"P1"},{"projectId":"P2"}]}`,
		`{"id":"E002","name":"Jane","projects":[]}`,
		`{"id":"E003","name":"Max"}`,
	)
	if len(tables) != 1 {
		t.Fatalf("FLAT produced %d tables, want 1", len(tables))
	}
	tab := tables[0]
	if len(tab.Rows) != 3 {
		t.Fatalf("row count = %d, want input record count 3", len(tab.Rows))
	}

	// scenario: nested array keeps its literal serialized form
	if got := tab.Rows[0]["projects"]; got != `[{"projectId":"P1"},{"projectId":"P2"}]` {
		t.Errorf("projects cell = %s", got)
	}
	if got := tab.Rows[1]["projects"]; got != `[]` {
		t.Errorf("empty projects cell = %s", got)
	}
	if _, ok := tab.Rows[2]["projects"]; ok {
		t.Error("record without projects should leave a null cell")
	}
}

func TestFlat_ColumnOrderAndValues(t *testing.T) {
	tables := runMode(t, ModeFlat, "t",
		`{"s":"x","n":-12.50,"b":false,"z":null,"o":{"deep":1},"a":[1,2]}`,
	)
	tab := tables[0]

	wantCols := []string{"s", "n", "b", "z", "o", "a"}
	if len(tab.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", tab.Columns, wantCols)
	}
	for i, c := range tab.Columns {
		if c != wantCols[i] {
			t.Errorf("column %d = %q, want %q", i, c, wantCols[i])
		}
	}

	row := tab.Rows[0]
	tests := []struct{ col, want string }{
		{"s", "x"},
		{"n", "-12.50"}, // numeric source text preserved
		{"b", "false"},
		{"z", ""},
		{"o", `{"deep":1}`},
		{"a", "[1,2]"},
	}
	for _, tt := range tests {
		if got := row[tt.col]; got != tt.want {
			t.Errorf("row[%q] = %q, want %q", tt.col, got, tt.want)
		}
	}
}
