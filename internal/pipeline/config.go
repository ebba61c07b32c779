package pipeline

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vegasq/tablify/internal/extract"
	"github.com/vegasq/tablify/internal/schema"
)

// Config carries the knobs the pipeline exposes. Everything has a working
// default; a config file is optional.
type Config struct {
	// SampleSize is how many records the structure analyzer walks.
	SampleSize int `yaml:"sample_size"`
	// LargeFileThreshold is the input byte size above which extraction
	// switches to the streaming strategy.
	LargeFileThreshold int64 `yaml:"large_file_threshold_bytes"`
	// OutputDir is where table files are written.
	OutputDir string `yaml:"output_dir"`
	// Format selects the table file format: csv, jsonl or parquet.
	Format string `yaml:"format"`
	// TimestampSuffix appends a run timestamp to output file names.
	TimestampSuffix bool `yaml:"timestamp_suffix"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		SampleSize:         schema.DefaultSampleSize,
		LargeFileThreshold: extract.DefaultLargeFileThreshold,
		OutputDir:          "output",
		Format:             "csv",
		TimestampSuffix:    false,
	}
}

// LoadConfig merges, in order: defaults, the YAML file at path (skipped
// silently when path is empty or the file does not exist), and TABLIFY_*
// environment variables. TABLIFY_CONFIG replaces the file path itself. A
// .env file in the working directory is loaded first when present.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	// missing .env is fine
	_ = godotenv.Load()

	if v := os.Getenv("TABLIFY_CONFIG"); v != "" {
		path = v
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("TABLIFY_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("TABLIFY_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("TABLIFY_LARGE_FILE_THRESHOLD"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TABLIFY_LARGE_FILE_THRESHOLD: %w", err)
		}
		cfg.LargeFileThreshold = n
	}
	if v := os.Getenv("TABLIFY_SAMPLE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid TABLIFY_SAMPLE_SIZE: %w", err)
		}
		cfg.SampleSize = n
	}
	return cfg, nil
}
