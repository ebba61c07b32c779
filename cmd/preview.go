package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vegasq/tablify/internal/pipeline"
	"github.com/vegasq/tablify/internal/preview"
	"github.com/vegasq/tablify/internal/transform"
)

var previewConfig string

func init() {
	previewCmd.Flags().StringVarP(&previewConfig, "config", "c", "tablify.yaml", "Config file to load")
}

var previewCmd = &cobra.Command{
	Use:   "preview <input.json>",
	Short: "Show a file's inferred structure without converting it",
	Long: `Analyze a JSON file and print its structure tree, detected nested
arrays, and the tables each conversion mode would produce. No output files
are written.
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input := args[0]

		cfg, err := pipeline.LoadConfig(previewConfig)
		if err != nil {
			fmt.Println("❌ Loading config:", err)
			os.Exit(1)
		}

		insp, err := pipeline.Inspect(input, cfg, warnPrinter{})
		if err != nil {
			fmt.Println("❌ Analysis failed:", err)
			os.Exit(1)
		}

		heading := color.New(color.FgCyan, color.Bold)
		heading.Printf("Structure of %s\n", input)
		fmt.Println(indent(preview.RenderTree(insp.Tree), "  "))
		fmt.Println()

		branches := insp.Tree.BranchPoints()
		if len(branches) > 0 {
			names := make([]string, len(branches))
			for i, b := range branches {
				names[i] = b.Path
			}
			fmt.Printf("Nested arrays of objects: %s\n", strings.Join(names, ", "))
		} else {
			fmt.Println("No nested arrays of objects; the structure is flat.")
		}
		fmt.Println()

		base := pipeline.BaseName(input)
		for _, mode := range []transform.Mode{transform.ModeFlat, transform.ModeExplode, transform.ModeRelational} {
			descs := insp.Describe(mode, base)
			fmt.Printf("%s:\n", mode)
			for _, d := range descs {
				fmt.Printf("  %s (~%d rows): %s\n", d.Name, d.EstimatedRows, strings.Join(d.Columns, ", "))
			}
		}
	},
}
