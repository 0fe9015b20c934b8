package extractors

import (
	"context"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/pptx"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// PptxExtractor adapts the streaming internal/pptx package to the
// plugins.Extractor contract.
type PptxExtractor struct{ base }

func NewPptxExtractor() *PptxExtractor {
	return &PptxExtractor{base{
		name:     "pptx",
		version:  "1.0.0",
		priority: 60,
		mimes:    []string{"application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	}}
}

func (e *PptxExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

func (e *PptxExtractor) ExtractBytes(_ context.Context, content []byte, _ string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return pptx.Extract(content, cfg)
}
