package extractors

import (
	"bytes"
	"context"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// ImageExtractor recovers text from raster images by dispatching to the
// configured OCR backend, and records the decoded width/height/format in
// ImageMetadata. It registers under the image/* prefix so any image MIME
// resolves to it without listing every format.
type ImageExtractor struct {
	base
	ocr plugins.OCRBackend
}

func NewImageExtractor(backend plugins.OCRBackend) *ImageExtractor {
	return &ImageExtractor{
		base: base{
			name:     "image",
			version:  "1.0.0",
			priority: 50,
			mimes:    []string{"image/*"},
		},
		ocr: backend,
	}
}

func (e *ImageExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

func (e *ImageExtractor) ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	language := ""
	if cfg != nil && cfg.OCR != nil {
		language = cfg.OCR.Language
	}

	text, err := e.ocr.ProcessImage(ctx, content, language)
	if err != nil {
		return nil, err
	}

	result := &types.ExtractionResult{
		Content:  strings.TrimSpace(text),
		MimeType: mimeType,
	}

	if imgConfig, format, decErr := image.DecodeConfig(bytes.NewReader(content)); decErr == nil {
		result.Metadata.Image = &types.ImageMetadata{
			Width:  imgConfig.Width,
			Height: imgConfig.Height,
			Format: format,
		}
	}

	return result, nil
}
