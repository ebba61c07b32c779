package sink

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vegasq/tablify/internal/transform"
)

// JSONLWriter commits tables as JSON Lines: one object per row, absent
// (null) cells omitted.
type JSONLWriter struct {
	Dir    string
	Suffix string
}

// Write writes the table to "<name><suffix>.jsonl" and returns the path.
func (w *JSONLWriter) Write(t *transform.Table) (string, error) {
	final := fileName(w.Dir, t.Name, w.Suffix, "jsonl")
	err := atomicWrite(final, func(f *os.File) error {
		enc := json.NewEncoder(f)
		for _, row := range t.Rows {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("failed to encode row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return final, nil
}
