package sink

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/tablify/internal/transform"
)

// ParquetWriter commits tables as Parquet files. Every column becomes an
// optional UTF8 string leaf; absent cells are written as nulls, matching
// the null/empty distinction the row model carries.
type ParquetWriter struct {
	Dir    string
	Suffix string
}

// Write writes the table to "<name><suffix>.parquet" and returns the path.
func (w *ParquetWriter) Write(t *transform.Table) (string, error) {
	final := fileName(w.Dir, t.Name, w.Suffix, "parquet")
	err := atomicWrite(final, func(f *os.File) error {
		if len(t.Columns) == 0 {
			return nil
		}
		group := parquet.Group{}
		for _, col := range t.Columns {
			group[col] = parquet.Optional(parquet.String())
		}
		sch := parquet.NewSchema(t.Name, group)
		pw := parquet.NewGenericWriter[map[string]any](f, sch)

		buf := make([]map[string]any, 1)
		for _, row := range t.Rows {
			rec := make(map[string]any, len(row))
			for _, col := range t.Columns {
				if v, ok := row[col]; ok {
					rec[col] = v
				}
			}
			buf[0] = rec
			if _, err := pw.Write(buf); err != nil {
				return fmt.Errorf("failed to write parquet row: %w", err)
			}
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("failed to close parquet writer: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return final, nil
}
