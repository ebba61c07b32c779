package transform

import (
	"testing"
)

func TestExplode_ScenarioTwoProjects(t *testing.T) {
	tables := runMode(t, ModeExplode, "employees",
		`{"id":"E001","name":"John","projects":[{"projectId":"P1"},{"projectId":"P2"}]}`,
	)
	tab := tables[0]
	if len(tab.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(tab.Rows))
	}
	for i, wantProject := range []string{"P1", "P2"} {
		row := tab.Rows[i]
		if row["id"] != "E001" || row["name"] != "John" {
			t.Errorf("row %d parent fields = %v", i, row)
		}
		if row["projects.projectId"] != wantProject {
			t.Errorf("row %d projects.projectId = %q, want %q", i, row["projects.projectId"], wantProject)
		}
	}
}

func TestExplode_CartesianProduct(t *testing.T) {
	// two independent arrays of lengths 2 and 3 -> 6 rows
	tables := runMode(t, ModeExplode, "t",
		`{"id":1,"xs":[{"x":"x1"},{"x":"x2"}],"ys":[{"y":"y1"},{"y":"y2"},{"y":"y3"}]}`,
	)
	tab := tables[0]
	if len(tab.Rows) != 6 {
		t.Fatalf("row count = %d, want 2*3=6", len(tab.Rows))
	}
	seen := make(map[string]bool)
	for _, row := range tab.Rows {
		if row["id"] != "1" {
			t.Errorf("parent field not duplicated: %v", row)
		}
		seen[row["xs.x"]+"/"+row["ys.y"]] = true
	}
	if len(seen) != 6 {
		t.Errorf("combinations = %d, want 6 distinct", len(seen))
	}
}

func TestExplode_NestedArraysRecurse(t *testing.T) {
	// 2 projects x 2 tasks in the first = 2 + 1 rows
	tables := runMode(t, ModeExplode, "t",
		`{"id":"E1","projects":[{"projectId":"P1","tasks":[{"taskId":"T1"},{"taskId":"T2"}]},{"projectId":"P2","tasks":[{"taskId":"T3"}]}]}`,
	)
	tab := tables[0]
	if len(tab.Rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(tab.Rows))
	}
	want := []struct{ project, task string }{
		{"P1", "T1"}, {"P1", "T2"}, {"P2", "T3"},
	}
	for i, w := range want {
		row := tab.Rows[i]
		if row["projects.projectId"] != w.project || row["projects.tasks.taskId"] != w.task {
			t.Errorf("row %d = %v, want project %s task %s", i, row, w.project, w.task)
		}
	}
}

func TestExplode_NoArraysSingleRow(t *testing.T) {
	tables := runMode(t, ModeExplode, "t", `{"a":1,"b":"x"}`)
	if n := len(tables[0].Rows); n != 1 {
		t.Fatalf("row count = %d, want 1", n)
	}
}

func TestExplode_EmptyArrayKeepsParentRow(t *testing.T) {
	tables := runMode(t, ModeExplode, "t", `{"id":"E1","projects":[]}`)
	tab := tables[0]
	if len(tab.Rows) != 1 {
		t.Fatalf("row count = %d, want 1 (parent data must not be dropped)", len(tab.Rows))
	}
	row := tab.Rows[0]
	if row["id"] != "E1" {
		t.Errorf("parent field lost: %v", row)
	}
	if got := row["projects"]; got != "" {
		t.Errorf("projects cell = %q, want empty", got)
	}
}

func TestExplode_ScalarArraysAndNestedObjects(t *testing.T) {
	tables := runMode(t, ModeExplode, "t",
		`{"skills":["go","sql"],"dept":{"name":"eng","manager":{"email":"m@x"}},"items":[{"sku":"S1"}]}`,
	)
	row := tables[0].Rows[0]
	tests := []struct{ col, want string }{
		{"skills", "go|sql"},
		{"dept.name", "eng"},
		{"dept.manager.email", "m@x"},
		{"items.sku", "S1"},
	}
	for _, tt := range tests {
		if got := row[tt.col]; got != tt.want {
			t.Errorf("row[%q] = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestExplode_ConflictingKindFieldStaysText(t *testing.T) {
	tables := runMode(t, ModeExplode, "t",
		`{"id":"1","p":[{"x":1}]}`,
		`{"id":"2","p":"plain"}`,
	)
	tab := tables[0]
	// the analyzer coerced p to text, so no record explodes it
	if len(tab.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(tab.Rows))
	}
	for _, c := range tab.Columns {
		if c == "p.x" {
			t.Errorf("coerced field expanded into %v", tab.Columns)
		}
	}
	if got := tab.Rows[0]["p"]; got != `[{"x":1}]` {
		t.Errorf("row 0 p = %q, want the serialized array", got)
	}
	if got := tab.Rows[1]["p"]; got != "plain" {
		t.Errorf("row 1 p = %q, want plain", got)
	}
}
