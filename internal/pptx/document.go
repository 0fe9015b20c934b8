// Package pptx implements the PPTX streaming extractor: a lazy slide
// iterator over a ZIP container, an LRU-bounded image resource cache,
// structural XML parsing of each slide's shape tree, and position-aware
// Markdown rendering.
package pptx

import (
	"bytes"
	"strings"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// ImageInfo summarizes one resolved embedded image for the
// images/image_count facets of PptxExtractionResult.
type ImageInfo struct {
	ID         string `json:"id"`
	SlideIndex int    `json:"slide_index"`
	Size       int    `json:"size"`
}

// Extract runs the full streaming pipeline over content and returns a
// types.ExtractionResult whose Content is the joined per-slide Markdown
// and whose Metadata carries PptxMetadata plus the slide_count/
// image_count/table_count/images facets.
func Extract(content []byte, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	maxEntries, maxSizeMB := 32, 64
	includeComments := true
	if cfg != nil {
		if cfg.Images != nil {
			maxEntries, maxSizeMB = cfg.Images.MaxCachedImages, cfg.Images.MaxCacheSizeMB
		}
		includeComments = cfg.PptxSlideComments
	}

	cache, err := NewImageCache(maxEntries, maxSizeMB)
	if err != nil {
		return nil, err
	}

	reader := bytes.NewReader(content)
	iter, err := NewIterator(reader, int64(len(content)), cache)
	if err != nil {
		return nil, err
	}

	var markdown strings.Builder
	imageCount, tableCount := 0, 0
	var images []ImageInfo

	for {
		slide, ok, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		markdown.WriteString(slide.ToMarkdown(includeComments))

		for _, elem := range slide.Elements {
			switch elem.Kind {
			case kindImage:
				imageCount++
			case kindTable:
				tableCount++
			}
		}
		for id, data := range slide.ImageData {
			images = append(images, ImageInfo{ID: id, SlideIndex: slide.Number, Size: len(data)})
		}
	}

	meta := readMetadata(iter.archive)

	return &types.ExtractionResult{
		Content:  strings.TrimSpace(markdown.String()),
		MimeType: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		Metadata: types.Metadata{
			Pptx: meta,
			Additional: map[string]any{
				"slide_count": iter.Len(),
				"image_count": imageCount,
				"table_count": tableCount,
				"images":      images,
			},
		},
	}, nil
}
