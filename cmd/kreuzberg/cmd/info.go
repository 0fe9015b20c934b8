package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Goldziher/kreuzberg-go/pkg/kreuzberg"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the resolved configuration and registered extractors",
	Long: `Display the effective ExtractionConfig (defaults, discovered
kreuzberg.toml, or --config overrides) plus the MIME types the default
extractor registry can handle.

Examples:
  kreuzberg info
  kreuzberg info --config ./kreuzberg.toml`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := kreuzberg.DefaultOptions()
	if cacheDir != "" {
		opts.CacheDir = cacheDir
	}
	engine, err := kreuzberg.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction engine: %w", err)
	}

	fmt.Printf("kreuzberg %s\n", version)
	fmt.Printf("cache directory: %s\n", opts.CacheDir)
	fmt.Printf("supported MIME types: %v\n\n", engine.Registry().MimeTypes())

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
