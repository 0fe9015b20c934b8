package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// MarkdownExtractor passes Markdown content through unchanged but
// additionally pulls headers/links/code blocks into metadata.
type MarkdownExtractor struct{ base }

func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{base{
		name:     "markdown",
		version:  "1.0.0",
		priority: 50,
		mimes:    []string{"text/markdown"},
	}}
}

func (e *MarkdownExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

var (
	mdHeaderRE    = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	mdLinkRE      = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	mdCodeFenceRE = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n(.*?)```")
)

func (e *MarkdownExtractor) ExtractBytes(_ context.Context, content []byte, mimeType string, _ *config.ExtractionConfig) (*types.ExtractionResult, error) {
	text := DecodeBestEffort(content)

	result := &types.ExtractionResult{
		Content:  text,
		MimeType: mimeType,
		Metadata: types.Metadata{Additional: map[string]any{}},
	}

	var headers []string
	for _, m := range mdHeaderRE.FindAllStringSubmatch(text, -1) {
		headers = append(headers, strings.TrimSpace(m[2]))
	}
	if len(headers) > 0 {
		result.Metadata.Additional["headers"] = headers
	}

	var links []map[string]string
	for _, m := range mdLinkRE.FindAllStringSubmatch(text, -1) {
		links = append(links, map[string]string{"text": m[1], "url": m[2]})
	}
	if len(links) > 0 {
		result.Metadata.Additional["links"] = links
	}

	var codeBlocks []string
	for _, m := range mdCodeFenceRE.FindAllStringSubmatch(text, -1) {
		codeBlocks = append(codeBlocks, m[1])
	}
	if len(codeBlocks) > 0 {
		result.Metadata.Additional["code_blocks"] = codeBlocks
	}

	return result, nil
}
