package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vegasq/tablify/internal/pipeline"
	"github.com/vegasq/tablify/internal/preview"
	"github.com/vegasq/tablify/internal/transform"
)

var (
	convertMode   string
	convertFormat string
	convertOutput string
	convertConfig string
)

func init() {
	convertCmd.Flags().StringVarP(&convertMode, "mode", "m", "", "Conversion mode: 1/flat, 2/explode, 3/relational (interactive when omitted)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format: csv, jsonl, parquet (default csv)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output directory")
	convertCmd.Flags().StringVarP(&convertConfig, "config", "c", "tablify.yaml", "Config file to load")
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.json>",
	Short: "Convert a JSON file to tabular output",
	Long: `Convert a JSON file to one or more table files.

Without --mode the structure analysis and mode options are shown and the
mode is chosen interactively.

Examples:
  tablify convert data.json                    # interactive mode selection
  tablify convert -m flat data.json
  tablify convert -m 3 -f parquet -o out data.json
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input := args[0]

		cfg, err := pipeline.LoadConfig(convertConfig)
		if err != nil {
			fmt.Println("❌ Loading config:", err)
			os.Exit(1)
		}
		if convertOutput != "" {
			cfg.OutputDir = convertOutput
		}
		if convertFormat != "" {
			cfg.Format = convertFormat
		}

		var mode transform.Mode
		if convertMode != "" {
			mode, err = transform.ParseMode(convertMode)
			if err != nil {
				fmt.Println("❌", err)
				os.Exit(1)
			}
		} else {
			mode, err = chooseModeInteractive(input, cfg)
			if err != nil {
				fmt.Println("❌", err)
				os.Exit(1)
			}
		}

		result, err := pipeline.Run(input, mode, cfg, warnPrinter{})
		if err != nil {
			fmt.Println("❌ Conversion failed:", err)
			os.Exit(1)
		}
		printSummary(result)
	},
}

// chooseModeInteractive shows the structure analysis plus per-mode previews
// and reads the user's choice from stdin.
func chooseModeInteractive(input string, cfg pipeline.Config) (transform.Mode, error) {
	insp, err := pipeline.Inspect(input, cfg, warnPrinter{})
	if err != nil {
		return 0, err
	}
	base := pipeline.BaseName(input)

	heading := color.New(color.FgCyan, color.Bold)
	heading.Println("\nJSON STRUCTURE ANALYSIS")
	fmt.Printf("  File:    %s\n", input)
	fmt.Printf("  Size:    %.2f MB\n", float64(insp.Tree.SourceBytes)/(1024*1024))
	if insp.Tree.CountExact {
		fmt.Printf("  Records: %d\n", insp.Tree.RecordCount)
	} else {
		fmt.Printf("  Records: %d+ (streamed)\n", insp.Tree.RecordCount)
	}
	fmt.Printf("  Depth:   %d\n", insp.Tree.MaxDepth)
	fmt.Println()
	fmt.Println(indent(preview.RenderTree(insp.Tree), "  "))
	fmt.Println()

	for _, mode := range []transform.Mode{transform.ModeFlat, transform.ModeExplode, transform.ModeRelational} {
		printModeOption(insp, mode, base)
	}

	fmt.Print("Select mode [1-3]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("failed to read mode selection: %w", err)
	}
	return transform.ParseMode(strings.TrimSpace(line))
}

var modeBlurbs = map[transform.Mode]string{
	transform.ModeFlat:       "Single file - one row per record, nested arrays as JSON text",
	transform.ModeExplode:    "Single file - one row per nested item, parent data duplicated",
	transform.ModeRelational: "Multiple linked files - one per nested array, joined by keys",
}

func printModeOption(insp *pipeline.Inspection, mode transform.Mode, base string) {
	title := color.New(color.FgGreen, color.Bold)
	title.Printf("[%d] %s\n", int(mode), mode)
	fmt.Printf("    %s\n", modeBlurbs[mode])

	descs := insp.Describe(mode, base)
	names := make([]string, len(descs))
	rows := 0
	for i, d := range descs {
		names[i] = d.Name
		rows += d.EstimatedRows
	}
	fmt.Printf("    Files: %d (%s)  Estimated rows: ~%d\n", len(descs), strings.Join(names, ", "), rows)

	if len(insp.Sample) > 0 {
		tables, err := preview.SampleTables(insp.Sample[0], insp.Tree, mode, base)
		if err == nil && len(tables) > 0 {
			fmt.Println(indent(preview.RenderSample(tables[0], 3), "    "))
		}
	}
	fmt.Println()
}

func printSummary(result *pipeline.Result) {
	color.Green("✅ Conversion complete (%s mode, %s)", result.Mode, result.Elapsed.Round(time.Millisecond))
	fmt.Printf("   Records processed: %d\n", result.Records)
	if result.Streamed {
		fmt.Println("   Extraction: streaming (large input)")
	}
	if result.Duplicates > 0 {
		fmt.Printf("   Duplicate rows removed: %d\n", result.Duplicates)
	}
	for _, t := range result.Tables {
		fmt.Printf("   %s: %d rows, %d columns -> %s\n", t.Name, t.Rows, t.Columns, t.Path)
	}
	if len(result.Warnings) > 0 {
		color.Yellow("   Warnings: %d (shown above)", len(result.Warnings))
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
