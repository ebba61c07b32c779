package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tablify",
	Short: "Convert any JSON file into tabular CSV output",
	Long: `tablify converts arbitrarily nested JSON documents into row/column tables.

Three conversion modes are available:

  1. FLAT        one row per record, nested arrays kept as JSON text
  2. EXPLODE     one row per combination of nested array items
  3. RELATIONAL  one linked table per nested array, joined by keys

Examples:

  tablify preview data/employees.json
  tablify convert -m flat data/employees.json
  tablify convert -m relational -o out/ data/employees.json
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(previewCmd)
}

// warnPrinter reports pipeline warnings to the terminal as they happen.
type warnPrinter struct{}

func (warnPrinter) Warnf(format string, args ...interface{}) {
	color.Yellow("⚠️  "+format, args...)
}
