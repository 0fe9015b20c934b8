package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Goldziher/kreuzberg-go/internal/config"
)

var (
	version = "0.1.0"

	// Global flags
	verbose       bool
	outputFormat  string
	cacheDir      string
	noCache       bool
	configPath    string
	maxConcurrent int
)

var rootCmd = &cobra.Command{
	Use:   "kreuzberg",
	Short: "Extract structured text and metadata from documents",
	Long: `Kreuzberg is a CLI for extracting text, metadata, and tables from
PDFs, PowerPoint decks, spreadsheets, archives, and other document
formats, with an optional on-disk extraction cache.

Examples:
  # Extract a single file to stdout
  kreuzberg extract invoice.pdf

  # Extract a directory of documents as a JSON array
  kreuzberg extract docs/*.pptx -f json -o results.json

  # Start the HTTP API
  kreuzberg serve

  # Inspect the resolved configuration
  kreuzberg info`,
	Version: version,
}

// Execute runs the root command; invoked by main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table, csv)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Override the extraction cache directory")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Disable the extraction cache for this invocation")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a kreuzberg.toml/.yaml/.json file (default: discovered by walking up from cwd)")
	rootCmd.PersistentFlags().IntVar(&maxConcurrent, "max-concurrent", 0, "Maximum concurrent extractions in a batch (default: 8)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if cacheDir == "" {
		cacheDir = os.Getenv("KREUZBERG_CACHE_DIR")
	}
}

// loadConfig resolves the effective ExtractionConfig: an explicit
// --config file if given, otherwise the kreuzberg.toml discovery walk,
// otherwise config.Default(), then applies the CLI's own overrides.
func loadConfig() (*config.ExtractionConfig, error) {
	var cfg *config.ExtractionConfig
	var err error

	switch {
	case configPath != "":
		cfg, err = loadConfigFile(configPath)
	default:
		cfg, err = config.Discover()
	}
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}

	if noCache {
		cfg.UseCache = false
	}
	if maxConcurrent > 0 {
		cfg.MaxConcurrent = maxConcurrent
	}
	return cfg, nil
}

func loadConfigFile(path string) (*config.ExtractionConfig, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FromYAMLFile(path)
	case ".json":
		return config.FromJSONFile(path)
	default:
		return config.FromTOMLFile(path)
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
