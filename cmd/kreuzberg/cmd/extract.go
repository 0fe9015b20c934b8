package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/Goldziher/kreuzberg-go/internal/resource"
	"github.com/Goldziher/kreuzberg-go/internal/types"
	"github.com/Goldziher/kreuzberg-go/pkg/kreuzberg"
)

var (
	outputFile string
	showStats  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract text and metadata from one or more documents",
	Long: `Extract text, metadata, and tables from PDFs, PPTX decks, spreadsheets,
archives, and the other formats kreuzberg understands.

Arguments may be file paths, glob patterns, or directories (directories
are walked recursively).

Examples:
  kreuzberg extract invoice.pdf
  kreuzberg extract slides.pptx -f table
  kreuzberg extract docs/*.docx -o results.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	extractCmd.Flags().BoolVar(&showStats, "stats", false, "Print peak/P50/P95/P99 memory stats for the batch to stderr")
}

func runExtract(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to extract")
	}

	printVerbose("Found %d files to extract\n", len(files))

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

	var items []types.BatchItem
	if showStats {
		var stats resource.Stats
		items, stats = engine.BatchExtractFilesWithStats(cmd.Context(), files, cfg)
		fmt.Fprintf(os.Stderr, "peak=%.2fMB p50=%.2fMB p95=%.2fMB p99=%.2fMB samples=%d duration=%s\n",
			stats.PeakMemoryMB, stats.P50MemoryMB, stats.P95MemoryMB, stats.P99MemoryMB, stats.SampleCount, stats.Duration)
	} else {
		items = engine.BatchExtractFiles(cmd.Context(), files, cfg)
	}

	results := make([]extractResult, len(files))
	for i, item := range items {
		results[i] = extractResult{File: files[i], Item: item}
		if item.Success {
			printVerbose("  %s: %d bytes extracted\n", files[i], len(item.Result.Content))
		} else {
			printVerbose("  %s: error: %s\n", files[i], item.Error)
		}
	}

	return outputResults(results)
}

// collectFiles expands each argument into a list of file paths. Patterns
// containing "**" (e.g. "docs/**/*.pptx") are matched with doublestar for
// arbitrary-depth recursion; everything else falls back to filepath.Glob,
// then to a directory walk, then to a literal path.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		if strings.Contains(arg, "**") {
			matches, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
			}
			for _, match := range matches {
				if info, err := os.Stat(match); err == nil && !info.IsDir() {
					files = append(files, match)
				}
			}
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 || (len(matches) == 1 && matches[0] == arg) {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}
			if info.IsDir() {
				walkErr := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() {
						files = append(files, path)
					}
					return nil
				})
				if walkErr != nil {
					return nil, walkErr
				}
			} else {
				files = append(files, arg)
			}
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				files = append(files, match)
			}
		}
	}

	return files, nil
}

// extractResult pairs a submitted path with its BatchItem for reporting.
type extractResult struct {
	File string
	Item types.BatchItem
}

func outputResults(results []extractResult) error {
	writer := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		return outputJSON(writer, results)
	case "table":
		return outputTable(writer, results)
	case "csv":
		return outputCSV(writer, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w *os.File, results []extractResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func outputTable(w *os.File, results []extractResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tMIME TYPE\tCONTENT LENGTH\tERROR")
	fmt.Fprintln(tw, "----\t---------\t--------------\t-----")

	for _, r := range results {
		if !r.Item.Success {
			fmt.Fprintf(tw, "%s\t\t\t%s\n", r.File, r.Item.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t\n", r.File, r.Item.Result.MimeType, len(r.Item.Result.Content))
	}

	return tw.Flush()
}

func outputCSV(w *os.File, results []extractResult) error {
	fmt.Fprintln(w, "file,mime_type,content_length,error")

	for _, r := range results {
		if !r.Item.Success {
			fmt.Fprintf(w, "%s,,,%s\n", r.File, escapeCSV(r.Item.Error))
			continue
		}
		fmt.Fprintf(w, "%s,%s,%d,\n", r.File, r.Item.Result.MimeType, len(r.Item.Result.Content))
	}

	return nil
}

func escapeCSV(s string) string {
	if strings.Contains(s, ",") || strings.Contains(s, "\"") || strings.Contains(s, "\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}
