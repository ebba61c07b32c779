package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vegasq/tablify/internal/transform"
)

// CSVWriter commits tables as CSV files with a header row.
type CSVWriter struct {
	Dir    string
	Suffix string
}

// Write writes the table to "<name><suffix>.csv" and returns the path. A
// table with no columns (a valid zero-record run) produces an empty file.
func (w *CSVWriter) Write(t *transform.Table) (string, error) {
	final := fileName(w.Dir, t.Name, w.Suffix, "csv")
	err := atomicWrite(final, func(f *os.File) error {
		if len(t.Columns) == 0 {
			return nil
		}
		cw := csv.NewWriter(f)
		if err := cw.Write(t.Columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		record := make([]string, len(t.Columns))
		for _, row := range t.Rows {
			for i, col := range t.Columns {
				record[i] = sanitizeCell(row[col])
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("failed to flush CSV writer: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return final, nil
}

// sanitizeCell guards against CSV injection by prefixing values whose first
// character could trigger formula execution in spreadsheet applications.
// Plain numbers are exempt: a leading minus on "-12.5" is not a formula.
func sanitizeCell(v string) string {
	if len(v) == 0 {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
		return "'" + strings.ReplaceAll(v, "'", "''")
	}
	return v
}
