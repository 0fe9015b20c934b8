package extractors

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// LegacyOfficeExtractor bridges legacy binary Office formats (.doc, .ppt)
// by shelling out to LibreOffice's headless converter, then re-running the
// result through the OOXML extractors that already handle .docx/.pptx
// formats.
type LegacyOfficeExtractor struct {
	base
	sofficePath string
	available   bool
	timeout     time.Duration
}

func NewLegacyOfficeExtractor() *LegacyOfficeExtractor {
	path, available := detectSoffice()
	return &LegacyOfficeExtractor{
		base: base{
			name:     "legacy-office",
			version:  "1.0.0",
			priority: 40,
			mimes:    []string{"application/msword", "application/vnd.ms-powerpoint"},
		},
		sofficePath: path,
		available:   available,
		timeout:     300 * time.Second,
	}
}

// detectSoffice looks for the LibreOffice headless binary in PATH and
// the common install locations across Linux/macOS.
func detectSoffice() (string, bool) {
	candidates := []string{
		"soffice",
		"/usr/bin/soffice",
		"/opt/homebrew/bin/soffice",
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, true
		}
	}
	return "", false
}

func (e *LegacyOfficeExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	if !e.available {
		return nil, kerr.NewMissingDependencyError("soffice (LibreOffice headless)")
	}

	outDir, err := os.MkdirTemp("", "kreuzberg-legacy-office-*")
	if err != nil {
		return nil, kerr.NewIOError("create conversion tempdir", err)
	}
	defer os.RemoveAll(outDir)

	targetFormat := "docx"
	if mimeType == "application/vnd.ms-powerpoint" {
		targetFormat = "pptx"
	}

	timeout := e.timeout
	if cfg != nil && cfg.SubprocessTimeoutSecs > 0 {
		timeout = time.Duration(cfg.SubprocessTimeoutSecs) * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.sofficePath,
		"--headless", "--convert-to", targetFormat, "--outdir", outDir, path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyConversionFailure(stdout.String(), stderr.String(), err)
	}

	converted := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"."+targetFormat)
	if _, statErr := os.Stat(converted); statErr != nil {
		return nil, classifyConversionFailure(stdout.String(), stderr.String(), statErr)
	}

	if targetFormat == "docx" {
		result, err := convertDocxToResult(converted)
		if err != nil {
			return nil, err
		}
		result.MimeType = mimeType
		return result, nil
	}

	result, err := convertPptxToResult(ctx, converted, cfg)
	if err != nil {
		return nil, err
	}
	result.MimeType = mimeType
	return result, nil
}

func (e *LegacyOfficeExtractor) ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	ext := ".doc"
	if mimeType == "application/vnd.ms-powerpoint" {
		ext = ".ppt"
	}

	tmp, err := os.CreateTemp("", "kreuzberg-legacy-input-*"+ext)
	if err != nil {
		return nil, kerr.NewIOError("create temp input file", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(content); err != nil {
		return nil, kerr.NewIOError("write temp input file", err)
	}
	tmp.Close()

	return e.ExtractFile(ctx, tmp.Name(), mimeType, cfg)
}

// classifyConversionFailure distinguishes an unsupported/corrupt input
// document (ParsingError) from a broken toolchain or environment
// (IOError) by scanning soffice's combined output, since its exit code
// alone doesn't reliably tell them apart.
func classifyConversionFailure(stdout, stderr string, cause error) error {
	combined := strings.ToLower(stdout + stderr)
	switch {
	case strings.Contains(combined, "unsupported"), strings.Contains(combined, "format"):
		return kerr.NewParsingError("soffice reported an unsupported or unreadable document", cause)
	case strings.Contains(combined, "error:"), strings.Contains(combined, "failed"):
		return kerr.NewParsingError("soffice conversion failed", cause)
	default:
		return kerr.NewIOError("run soffice conversion", cause)
	}
}

// convertDocxToResult reuses the Word OOXML path once soffice has
// produced a .docx: DOCX itself is handled by the pandoc-backed
// extractor, so this simply re-reads the converted file and dispatches
// into that path.
func convertDocxToResult(path string) (*types.ExtractionResult, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return NewPandocExtractor().ExtractBytes(context.Background(), content,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil)
}

func convertPptxToResult(ctx context.Context, path string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return NewPptxExtractor().ExtractBytes(ctx, content,
		"application/vnd.openxmlformats-officedocument.presentationml.presentation", cfg)
}
