package extractors

import (
	"context"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// TextExtractor handles plain text with best-effort encoding guessing,
// decoding Latin-1/UTF-16 inputs through golang.org/x/text before
// falling back to lossy UTF-8.
type TextExtractor struct{ base }

// NewTextExtractor constructs the plain-text extractor at the default
// registry priority.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{base{
		name:     "text",
		version:  "1.0.0",
		priority: 50,
		mimes:    []string{"text/plain", "text/csv", "application/json"},
	}}
}

func (e *TextExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

func (e *TextExtractor) ExtractBytes(_ context.Context, content []byte, mimeType string, _ *config.ExtractionConfig) (*types.ExtractionResult, error) {
	text := DecodeBestEffort(content)
	return &types.ExtractionResult{Content: text, MimeType: mimeType}, nil
}

// DecodeBestEffort returns content as a valid UTF-8 string: content that
// already decodes cleanly is passed through; a UTF-16 BOM routes through
// the UTF-16 decoder; everything else is treated as Windows-1252, the
// encoding scraped/legacy text files most commonly arrive in.
func DecodeBestEffort(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}

	if len(content) >= 2 && ((content[0] == 0xFF && content[1] == 0xFE) || (content[0] == 0xFE && content[1] == 0xFF)) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if decoded, _, err := transform.Bytes(dec, content); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}

	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(content); err == nil {
		return string(decoded)
	}

	return string(content)
}
