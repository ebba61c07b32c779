package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/vegasq/tablify/internal/transform"
)

const employeesDoc = `{
	"employees": [
		{
			"id": "E001",
			"name": "John",
			"projects": [
				{"projectId": "P1", "role": "Lead"},
				{"projectId": "P2", "role": "Dev"}
			]
		},
		{
			"id": "E002",
			"name": "Jane",
			"projects": [
				{"projectId": "P1", "role": "Dev"}
			]
		}
	]
}`

func writeInput(t *testing.T, name, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return records
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"employees.json", "employees"},
		{"/data/api_export.json", "api_export"},
		{"plain", "plain"},
		{".json", "output"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRun_Relational(t *testing.T) {
	input := writeInput(t, "employees.json", employeesDoc)
	cfg := testConfig(t)

	result, err := Run(input, transform.ModeRelational, cfg, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Records != 2 {
		t.Errorf("records = %d, want 2", result.Records)
	}
	if result.Streamed {
		t.Errorf("small input should use bulk extraction")
	}
	if len(result.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(result.Tables))
	}

	root := readCSV(t, result.Tables[0].Path)
	if result.Tables[0].Name != "employees" {
		t.Errorf("root table = %q, want employees", result.Tables[0].Name)
	}
	if len(root) != 3 {
		t.Errorf("root CSV has %d lines, want header + 2 rows", len(root))
	}

	child := readCSV(t, result.Tables[1].Path)
	if result.Tables[1].Name != "projects" {
		t.Errorf("child table = %q, want projects", result.Tables[1].Name)
	}
	if len(child) != 4 {
		t.Fatalf("child CSV has %d lines, want header + 3 rows", len(child))
	}
	if child[0][0] != "employees_id" {
		t.Errorf("child key column = %q, want employees_id", child[0][0])
	}
	if child[1][0] != "E001" || child[3][0] != "E002" {
		t.Errorf("child key values = %q/%q, want E001/E002", child[1][0], child[3][0])
	}
}

func TestRun_FlatRowCountMatchesRecords(t *testing.T) {
	input := writeInput(t, "employees.json", employeesDoc)
	cfg := testConfig(t)

	result, err := Run(input, transform.ModeFlat, cfg, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(result.Tables))
	}
	if result.Tables[0].Rows != result.Records {
		t.Errorf("flat rows = %d, records = %d; must match",
			result.Tables[0].Rows, result.Records)
	}
	rows := readCSV(t, result.Tables[0].Path)
	if len(rows) != 3 {
		t.Errorf("CSV has %d lines, want header + 2 rows", len(rows))
	}
}

func TestRun_StreamingMatchesBulk(t *testing.T) {
	input := writeInput(t, "employees.json", employeesDoc)

	bulkCfg := testConfig(t)
	bulk, err := Run(input, transform.ModeFlat, bulkCfg, nil)
	if err != nil {
		t.Fatalf("bulk run failed: %v", err)
	}

	streamCfg := testConfig(t)
	streamCfg.LargeFileThreshold = 1 // force streaming
	stream, err := Run(input, transform.ModeFlat, streamCfg, nil)
	if err != nil {
		t.Fatalf("streaming run failed: %v", err)
	}
	if !stream.Streamed {
		t.Fatalf("expected streaming extraction")
	}

	bulkRows := readCSV(t, bulk.Tables[0].Path)
	streamRows := readCSV(t, stream.Tables[0].Path)
	if len(bulkRows) != len(streamRows) {
		t.Fatalf("row counts differ: bulk %d, stream %d", len(bulkRows), len(streamRows))
	}
	for i := range bulkRows {
		for j := range bulkRows[i] {
			if bulkRows[i][j] != streamRows[i][j] {
				t.Errorf("cell [%d][%d] differs: bulk %q, stream %q",
					i, j, bulkRows[i][j], streamRows[i][j])
			}
		}
	}
}

func TestRun_EmptyInputWarns(t *testing.T) {
	input := writeInput(t, "empty.json", `[]`)
	cfg := testConfig(t)

	result, err := Run(input, transform.ModeFlat, cfg, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Records != 0 {
		t.Errorf("records = %d, want 0", result.Records)
	}
	if len(result.Warnings) == 0 {
		t.Errorf("expected a warning about the empty input")
	}
	data, err := os.ReadFile(result.Tables[0].Path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("empty run should produce an empty file, got %d bytes", len(data))
	}
}

func TestRun_TimestampSuffix(t *testing.T) {
	input := writeInput(t, "employees.json", employeesDoc)
	cfg := testConfig(t)
	cfg.TimestampSuffix = true

	result, err := Run(input, transform.ModeFlat, cfg, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	base := filepath.Base(result.Tables[0].Path)
	// employees_YYYYMMDD_HHMMSS.csv
	if len(base) != len("employees_20060102_150405.csv") {
		t.Errorf("unexpected file name %q", base)
	}
}

func TestInspect(t *testing.T) {
	input := writeInput(t, "employees.json", employeesDoc)
	cfg := testConfig(t)

	insp, err := Inspect(input, cfg, nil)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if insp.Tree.RecordCount != 2 {
		t.Errorf("record count = %d, want 2", insp.Tree.RecordCount)
	}
	if !insp.Tree.CountExact {
		t.Errorf("bulk inspection should know the exact count")
	}
	if len(insp.Sample) != 2 {
		t.Errorf("sample = %d records, want 2", len(insp.Sample))
	}
	if insp.Tree.Field("projects") == nil {
		t.Errorf("schema missing projects branch")
	}

	descs := insp.Describe(transform.ModeRelational, "employees")
	if len(descs) != 2 {
		t.Errorf("got %d descriptors, want 2", len(descs))
	}

	// no output directory side effects
	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("inspection wrote %d files; it must write nothing", len(entries))
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults when file missing", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg != DefaultConfig() {
			t.Errorf("cfg = %+v, want defaults", cfg)
		}
	})

	t.Run("yaml file overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tablify.yaml")
		doc := "output_dir: /tmp/out\nformat: jsonl\nsample_size: 10\n"
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg.OutputDir != "/tmp/out" || cfg.Format != "jsonl" || cfg.SampleSize != 10 {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.LargeFileThreshold != DefaultConfig().LargeFileThreshold {
			t.Errorf("unset keys must keep defaults")
		}
	})

	t.Run("TABLIFY_CONFIG replaces the path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "elsewhere.yaml")
		if err := os.WriteFile(path, []byte("format: jsonl\n"), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		t.Setenv("TABLIFY_CONFIG", path)
		cfg, err := LoadConfig("tablify.yaml")
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg.Format != "jsonl" {
			t.Errorf("format = %q, want jsonl", cfg.Format)
		}
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("TABLIFY_FORMAT", "parquet")
		t.Setenv("TABLIFY_SAMPLE_SIZE", "3")
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg.Format != "parquet" || cfg.SampleSize != 3 {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("invalid env value", func(t *testing.T) {
		t.Setenv("TABLIFY_SAMPLE_SIZE", "many")
		if _, err := LoadConfig(""); err == nil {
			t.Errorf("expected error for non-numeric TABLIFY_SAMPLE_SIZE")
		}
	})
}
