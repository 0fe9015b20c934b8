package extractors

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/ocr"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// PDFExtractor pulls native text out of a PDF via pdfcpu's content
// extraction and falls back to OCR when the document is scanned or
// force_ocr is set, rendering each page to an image and dispatching it
// to the OCR backend. Uses pdfcpu's api.PageCountFile and
// api.ExtractContentFile (temp-dir extraction, then reading the written
// _Content_page_N.txt files back).
type PDFExtractor struct {
	base
	ocr *ocr.Backend
}

func NewPDFExtractor(backend *ocr.Backend) *PDFExtractor {
	return &PDFExtractor{
		base: base{
			name:     "pdf",
			version:  "1.0.0",
			priority: 60,
			mimes:    []string{"application/pdf"},
		},
		ocr: backend,
	}
}

func (e *PDFExtractor) ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	tmp, err := os.CreateTemp("", "kreuzberg-pdf-*.pdf")
	if err != nil {
		return nil, kerr.NewIOError("create temp PDF file", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, kerr.NewIOError("write temp PDF file", err)
	}
	tmp.Close()

	return e.ExtractFile(ctx, tmp.Name(), mimeType, cfg)
}

func (e *PDFExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	conf := model.NewDefaultConfiguration()

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, kerr.NewParsingError("read PDF page count", err)
	}

	text := ""
	forceOCR := cfg != nil && cfg.ForceOCR
	if !forceOCR {
		text, err = extractNativeText(path, pageCount, conf)
		if err != nil {
			return nil, err
		}
	}

	meta := &types.PDFMetadata{PageCount: pageCount}
	raw, readErr := os.ReadFile(path)
	if readErr == nil {
		populatePDFInfo(meta, raw)
	}

	if (forceOCR || strings.TrimSpace(text) == "") && cfg != nil && cfg.OCR != nil && e.ocr != nil {
		ocrText, err := e.ocr.ExtractPDF(ctx, path, pageCount, cfg.OCR.Language)
		if err != nil {
			return nil, err
		}
		text = ocrText
	}

	return &types.ExtractionResult{
		Content:  text,
		MimeType: mimeType,
		Metadata: types.Metadata{PDF: meta},
	}, nil
}

// extractNativeText runs pdfcpu's ExtractContentFile into a scratch
// directory and concatenates the per-page text files it writes, in page
// order.
func extractNativeText(path string, pageCount int, conf *model.Configuration) (string, error) {
	tempDir, err := os.MkdirTemp("", "kreuzberg-pdf-text-*")
	if err != nil {
		return "", kerr.NewIOError("create PDF text scratch dir", err)
	}
	defer os.RemoveAll(tempDir)

	if err := api.ExtractContentFile(path, tempDir, nil, conf); err != nil {
		return "", kerr.NewParsingError("extract PDF content", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var b strings.Builder
	for page := 1; page <= pageCount; page++ {
		contentFile := filepath.Join(tempDir, baseName+"_Content_page_"+strconv.Itoa(page)+".txt")
		pageBytes, err := os.ReadFile(contentFile)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.Write(pageBytes)
	}
	return b.String(), nil
}

var pdfInfoFieldRE = map[string]*regexp.Regexp{
	"Title":        regexp.MustCompile(`/Title\s*\(([^)]*)\)`),
	"Author":       regexp.MustCompile(`/Author\s*\(([^)]*)\)`),
	"Producer":     regexp.MustCompile(`/Producer\s*\(([^)]*)\)`),
	"CreationDate": regexp.MustCompile(`/CreationDate\s*\(([^)]*)\)`),
	"ModDate":      regexp.MustCompile(`/ModDate\s*\(([^)]*)\)`),
}

// populatePDFInfo scans the raw PDF bytes for the document-info
// dictionary's Title/Author/Producer string entries with a small regex
// scan rather than a full object-graph traversal: pdfcpu's own metadata
// API targets batch CLI reporting, not a single Go-struct accessor, so
// the cheapest robust way to recover these three fields is pattern
// matching on the (typically uncompressed) trailer/info object.
func populatePDFInfo(meta *types.PDFMetadata, raw []byte) {
	text := string(raw)
	if m := pdfInfoFieldRE["Title"].FindStringSubmatch(text); len(m) == 2 {
		meta.Title = strings.TrimSpace(m[1])
	}
	if m := pdfInfoFieldRE["Producer"].FindStringSubmatch(text); len(m) == 2 {
		meta.Producer = strings.TrimSpace(m[1])
	}
	if m := pdfInfoFieldRE["Author"].FindStringSubmatch(text); len(m) == 2 {
		meta.Author = strings.TrimSpace(m[1])
	}
	if m := pdfInfoFieldRE["CreationDate"].FindStringSubmatch(text); len(m) == 2 {
		meta.Created = parsePDFDate(m[1])
	}
	if m := pdfInfoFieldRE["ModDate"].FindStringSubmatch(text); len(m) == 2 {
		meta.Modified = parsePDFDate(m[1])
	}
}

// parsePDFDate converts a PDF date string (D:YYYYMMDDHHmmSS with an
// optional timezone suffix) into an ISO-8601 string, keeping the raw
// value when it doesn't parse so a malformed date is surfaced rather
// than silently dropped. Returns nil for an empty value.
func parsePDFDate(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	digits := strings.TrimPrefix(raw, "D:")
	// Pad partial dates (the PDF date format allows truncating anything
	// after YYYY) out to a full timestamp before parsing.
	numeric := digits
	if idx := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); idx >= 0 {
		numeric = digits[:idx]
	}
	if len(numeric) < 4 {
		out := raw
		return &out
	}
	const full = "20060102150405"
	padded := numeric + "00000101000000"[len(numeric):]

	t, err := time.Parse(full, padded[:len(full)])
	if err != nil {
		out := raw
		return &out
	}
	out := t.Format("2006-01-02T15:04:05")
	return &out
}
