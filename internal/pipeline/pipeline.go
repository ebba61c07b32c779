// Package pipeline wires extraction, analysis, transformation and sinks
// into one run: extract records, infer the schema from a bounded sample,
// feed every record through the selected mode, deduplicate relational
// tables, and commit each table through the configured sink.
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/vegasq/tablify/internal/extract"
	"github.com/vegasq/tablify/internal/preview"
	"github.com/vegasq/tablify/internal/schema"
	"github.com/vegasq/tablify/internal/sink"
	"github.com/vegasq/tablify/internal/transform"
	"github.com/vegasq/tablify/internal/value"
)

// Warnings is a Reporter that accumulates messages for the run summary.
// It can forward each message to a wrapped reporter (the CLI's printer).
type Warnings struct {
	Forward  schema.Reporter
	Messages []string
}

// Warnf records a warning and forwards it.
func (w *Warnings) Warnf(format string, args ...interface{}) {
	w.Messages = append(w.Messages, fmt.Sprintf(format, args...))
	if w.Forward != nil {
		w.Forward.Warnf(format, args...)
	}
}

// TableResult summarizes one committed table.
type TableResult struct {
	Name    string
	Rows    int
	Columns int
	Path    string
}

// Result summarizes a completed run.
type Result struct {
	Mode       transform.Mode
	Records    int
	Streamed   bool
	Duplicates int
	Tables     []TableResult
	Warnings   []string
	Elapsed    time.Duration
}

// Inspection is the read-only analysis used by the preview surface and the
// interactive prompt. Producing it writes nothing.
type Inspection struct {
	Tree     *schema.Tree
	Sample   []value.Value
	Streamed bool
}

// BaseName derives the output table base name from the input file name.
func BaseName(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "output"
	}
	return base
}

// Inspect reads enough of the input to infer its schema: the stream is
// opened, up to SampleSize records are pulled, and the analyzer runs on
// them. For bulk inputs the exact record count is known; streamed inputs
// report only the sampled prefix.
func Inspect(input string, cfg Config, rep schema.Reporter) (*Inspection, error) {
	if rep == nil {
		rep = schema.Discard
	}
	ex, size, err := extract.Open(input, cfg.LargeFileThreshold)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ex.Close() }()

	sampleSize := cfg.SampleSize
	if sampleSize <= 0 {
		sampleSize = schema.DefaultSampleSize
	}
	var sample []value.Value
	for len(sample) < sampleSize {
		rec, err := ex.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sample = append(sample, rec)
	}

	total := -1
	if counter, ok := ex.(extract.Counter); ok {
		total = counter.Len()
	}
	_, streamed := ex.(*extract.Stream)

	analyzer := schema.NewAnalyzer(rep)
	analyzer.SampleSize = sampleSize
	tree, err := analyzer.Analyze(sample, total, size)
	if err != nil {
		return nil, err
	}
	return &Inspection{Tree: tree, Sample: sample, Streamed: streamed}, nil
}

// Run executes a full conversion of input under the given mode and commits
// the resulting tables. The extraction strategy is chosen by input size
// and has no effect on output content.
func Run(input string, mode transform.Mode, cfg Config, rep schema.Reporter) (*Result, error) {
	start := time.Now()
	warnings := &Warnings{Forward: rep}

	ex, size, err := extract.Open(input, cfg.LargeFileThreshold)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ex.Close() }()
	_, streamed := ex.(*extract.Stream)

	sampleSize := cfg.SampleSize
	if sampleSize <= 0 {
		sampleSize = schema.DefaultSampleSize
	}

	// The sample is buffered for analysis and then replayed into the
	// transformer, so the input is still read in a single pass.
	var sample []value.Value
	for len(sample) < sampleSize {
		rec, err := ex.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sample = append(sample, rec)
	}

	total := -1
	if counter, ok := ex.(extract.Counter); ok {
		total = counter.Len()
	}
	analyzer := schema.NewAnalyzer(warnings)
	analyzer.SampleSize = sampleSize
	tree, err := analyzer.Analyze(sample, total, size)
	if err != nil {
		return nil, err
	}

	baseName := BaseName(input)
	tr, err := transform.New(mode, tree, baseName)
	if err != nil {
		return nil, err
	}

	records := 0
	for _, rec := range sample {
		if err := tr.Add(rec); err != nil {
			return nil, err
		}
		records++
	}
	for {
		rec, err := ex.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := tr.Add(rec); err != nil {
			return nil, err
		}
		records++
	}
	if records == 0 {
		warnings.Warnf("input contains no records; output will be empty")
	}

	tables := tr.Tables()
	duplicates := 0
	if mode == transform.ModeRelational {
		for _, t := range tables {
			duplicates += transform.Deduplicate(t)
		}
	}

	format, err := sink.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	suffix := ""
	if cfg.TimestampSuffix {
		suffix = "_" + start.Format("20060102_150405")
	}
	writer, err := sink.New(format, cfg.OutputDir, suffix)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Mode:       mode,
		Records:    records,
		Streamed:   streamed,
		Duplicates: duplicates,
	}
	for _, t := range tables {
		path, err := writer.Write(t)
		if err != nil {
			return nil, fmt.Errorf("failed to write table %q: %w", t.Name, err)
		}
		result.Tables = append(result.Tables, TableResult{
			Name:    t.Name,
			Rows:    len(t.Rows),
			Columns: len(t.Columns),
			Path:    path,
		})
	}
	result.Warnings = warnings.Messages
	result.Elapsed = time.Since(start)
	return result, nil
}

// Describe exposes the pure mode preview for an inspection, so interactive
// tooling can show output shapes without running a transformation.
func (i *Inspection) Describe(mode transform.Mode, baseName string) []preview.TableDescriptor {
	return preview.Describe(i.Tree, mode, baseName)
}
