package extractors

import (
	"bytes"
	"context"
	"encoding/xml"
	"strings"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// XMLExtractor runs a streaming SAX-like parse over arbitrary XML,
// accumulating text content plus element counts and unique element names
// via encoding/xml's token-based Decoder. The PPTX extractor
// (internal/pptx) reuses the same decoder for its own structural parse.
type XMLExtractor struct{ base }

func NewXMLExtractor() *XMLExtractor {
	return &XMLExtractor{base{
		name:     "xml",
		version:  "1.0.0",
		priority: 50,
		mimes:    []string{"application/xml", "text/xml"},
	}}
}

func (e *XMLExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

func (e *XMLExtractor) ExtractBytes(_ context.Context, content []byte, mimeType string, _ *config.ExtractionConfig) (*types.ExtractionResult, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.Strict = false

	var text strings.Builder
	elementCounts := map[string]int{}
	uniqueElements := map[string]bool{}

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elementCounts[t.Name.Local]++
			uniqueElements[t.Name.Local] = true
		case xml.CharData:
			if chunk := strings.TrimSpace(string(t)); chunk != "" {
				if text.Len() > 0 {
					text.WriteString(" ")
				}
				text.WriteString(chunk)
			}
		}
	}

	if len(elementCounts) == 0 {
		return nil, kerr.NewParsingError("no XML elements found", nil)
	}

	names := make([]string, 0, len(uniqueElements))
	for name := range uniqueElements {
		names = append(names, name)
	}

	return &types.ExtractionResult{
		Content:  text.String(),
		MimeType: mimeType,
		Metadata: types.Metadata{Additional: map[string]any{
			"element_counts":  elementCounts,
			"unique_elements": names,
			"element_total":   len(names),
		}},
	}, nil
}
