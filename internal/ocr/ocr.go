// Package ocr bridges the extraction pipeline to a Tesseract
// installation: page-to-image rendering for scanned PDFs, the Tesseract
// subprocess invocation itself, and hOCR-to-Markdown conversion of its
// structured output. Follows the same exec.CommandContext + temp-file +
// bounded-timeout shape as the LibreOffice/Pandoc bridges, generalized
// to a two-stage pipeline (render, then recognize).
package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
)

// Backend wraps a detected Tesseract installation (and, for PDF page
// rendering, a detected Poppler pdftoppm installation).
type Backend struct {
	tesseractPath string
	pdftoppmPath  string
	available     bool
	timeout       time.Duration
}

// NewBackend probes PATH and the common install locations for tesseract
// and pdftoppm.
func NewBackend() *Backend {
	tesseractPath, tesseractOK := detectTool("tesseract")
	pdftoppmPath, _ := detectTool("pdftoppm")
	return &Backend{
		tesseractPath: tesseractPath,
		pdftoppmPath:  pdftoppmPath,
		available:     tesseractOK,
		timeout:       120 * time.Second,
	}
}

func detectTool(name string) (string, bool) {
	candidates := []string{name, "/usr/bin/" + name, "/opt/homebrew/bin/" + name, "/usr/local/bin/" + name}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, true
		}
	}
	return "", false
}

// Available reports whether a usable Tesseract installation was found.
func (b *Backend) Available() bool { return b.available }

func (b *Backend) Name() string      { return "tesseract" }
func (b *Backend) Version() string   { return "1.0.0" }
func (b *Backend) Initialize() error { return nil }
func (b *Backend) Shutdown() error   { return nil }

func (b *Backend) BackendType() plugins.OCRBackendType { return plugins.OCRBackendTesseract }

// ProcessImage satisfies plugins.OCRBackend for callers (the image
// extractor) that only need the generic image-to-text capability, not the
// PDF rasterizing path.
func (b *Backend) ProcessImage(ctx context.Context, imageBytes []byte, language string) (string, error) {
	return b.ExtractImage(ctx, imageBytes, language)
}

var _ plugins.OCRBackend = (*Backend)(nil)

// ExtractImage runs Tesseract's hOCR output mode over a single image and
// returns the recovered text rendered as Markdown paragraphs.
func (b *Backend) ExtractImage(ctx context.Context, imageBytes []byte, lang string) (string, error) {
	if !b.available {
		return "", kerr.NewMissingDependencyError("tesseract")
	}

	tmp, err := os.CreateTemp("", "kreuzberg-ocr-input-*.png")
	if err != nil {
		return "", kerr.NewIOError("create OCR temp input", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(imageBytes); err != nil {
		tmp.Close()
		return "", kerr.NewIOError("write OCR temp input", err)
	}
	tmp.Close()

	hocr, err := b.runHOCR(ctx, tmp.Name(), lang)
	if err != nil {
		return "", err
	}
	return HOCRToMarkdown(hocr), nil
}

// ExtractPDF rasterizes pageCount pages of the PDF at path via pdftoppm
// and OCRs each, joining the per-page Markdown with blank lines.
func (b *Backend) ExtractPDF(ctx context.Context, path string, pageCount int, lang string) (string, error) {
	if !b.available {
		return "", kerr.NewMissingDependencyError("tesseract")
	}
	if b.pdftoppmPath == "" {
		return "", kerr.NewMissingDependencyError("pdftoppm")
	}

	tempDir, err := os.MkdirTemp("", "kreuzberg-ocr-pages-*")
	if err != nil {
		return "", kerr.NewIOError("create OCR page scratch dir", err)
	}
	defer os.RemoveAll(tempDir)

	prefix := filepath.Join(tempDir, "page")
	runCtx, cancel := context.WithTimeout(ctx, b.timeout*time.Duration(pageCount+1))
	defer cancel()

	cmd := exec.CommandContext(runCtx, b.pdftoppmPath, "-r", "200", "-png", path, prefix)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", kerr.NewOCRError("render PDF pages for OCR", err)
	}

	var b2 strings.Builder
	for page := 1; page <= pageCount; page++ {
		imagePath := prefix + "-" + strconv.Itoa(page) + ".png"
		if _, err := os.Stat(imagePath); err != nil {
			imagePath = prefix + "-" + padPageNumber(page, pageCount) + ".png"
			if _, err := os.Stat(imagePath); err != nil {
				continue
			}
		}

		hocr, err := b.runHOCR(runCtx, imagePath, lang)
		if err != nil {
			return "", err
		}

		if b2.Len() > 0 {
			b2.WriteString("\n\n")
		}
		b2.WriteString(HOCRToMarkdown(hocr))
	}

	return b2.String(), nil
}

// padPageNumber accounts for pdftoppm zero-padding page numbers in its
// output filenames once the page count reaches double/triple digits.
func padPageNumber(page, total int) string {
	width := len(strconv.Itoa(total))
	s := strconv.Itoa(page)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func (b *Backend) runHOCR(ctx context.Context, imagePath, lang string) ([]byte, error) {
	if lang == "" {
		lang = "eng"
	}

	outBase := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	cmd := exec.CommandContext(ctx, b.tesseractPath, imagePath, outBase, "-l", lang, "hocr")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, kerr.NewOCRError("run tesseract", err)
	}

	hocrPath := outBase + ".hocr"
	data, err := os.ReadFile(hocrPath)
	if err != nil {
		return nil, kerr.NewOCRError("read tesseract hOCR output", err)
	}
	os.Remove(hocrPath)
	return data, nil
}

// HOCRToMarkdown converts Tesseract's hOCR (XHTML carrying word boxes and
// confidences) into plain Markdown paragraphs: each "ocr_par" element
// becomes one paragraph, built by joining its "ocrx_word" text nodes with
// spaces.
func HOCRToMarkdown(hocr []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(hocr))
	if err != nil {
		return ""
	}

	var paragraphs []string
	doc.Find(".ocr_par").Each(func(_ int, par *goquery.Selection) {
		var words []string
		par.Find(".ocrx_word").Each(func(_ int, word *goquery.Selection) {
			if text := strings.TrimSpace(word.Text()); text != "" {
				words = append(words, text)
			}
		})
		if len(words) > 0 {
			paragraphs = append(paragraphs, strings.Join(words, " "))
		}
	})

	if len(paragraphs) == 0 {
		return strings.TrimSpace(doc.Find("body").Text())
	}
	return strings.Join(paragraphs, "\n\n")
}
