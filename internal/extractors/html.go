package extractors

import (
	"context"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/numfmt"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// HTMLExtractor converts HTML to Markdown through html-to-markdown/v2,
// using goquery first to walk the DOM for <table> structure and to
// recover a document title, since the Markdown converter flattens both.
type HTMLExtractor struct{ base }

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{base{
		name:     "html",
		version:  "1.0.0",
		priority: 50,
		mimes:    []string{"text/html"},
	}}
}

func (e *HTMLExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

func (e *HTMLExtractor) ExtractBytes(_ context.Context, content []byte, mimeType string, _ *config.ExtractionConfig) (*types.ExtractionResult, error) {
	html := DecodeBestEffort(content)

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return nil, kerr.NewParsingError("convert HTML to markdown", err)
	}

	result := &types.ExtractionResult{
		Content:  strings.TrimSpace(markdown),
		MimeType: mimeType,
		Metadata: types.Metadata{Additional: map[string]any{}},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// A markdown conversion that succeeded despite a DOM parse we
		// can't walk is still a usable result; structural metadata is a
		// bonus, not a requirement.
		return result, nil
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		result.Metadata.Additional["title"] = title
	}

	tables := extractHTMLTables(doc)
	result.Tables = tables

	return result, nil
}

// extractHTMLTables walks every <table> in doc into a types.Table,
// escaping nothing here since the grid is raw cell text (escaping is an
// output-rendering concern, handled where Markdown/HTML is re-emitted).
func extractHTMLTables(doc *goquery.Document) []types.Table {
	var tables []types.Table

	doc.Find("table").Each(func(_ int, tableSel *goquery.Selection) {
		var cells [][]string
		tableSel.Find("tr").Each(func(_ int, rowSel *goquery.Selection) {
			var row []string
			rowSel.Find("th, td").Each(func(_ int, cellSel *goquery.Selection) {
				row = append(row, strings.TrimSpace(cellSel.Text()))
			})
			if len(row) > 0 {
				cells = append(cells, row)
			}
		})
		if len(cells) > 0 {
			tables = append(tables, types.Table{Cells: cells, Markdown: renderHTMLTableMarkdown(cells)})
		}
	})

	return tables
}

// renderHTMLTableMarkdown re-renders a parsed table as GitHub-flavored
// Markdown, consistent with how the Excel extractor renders its tables.
func renderHTMLTableMarkdown(cells [][]string) string {
	if len(cells) == 0 {
		return ""
	}
	var b strings.Builder
	for i, row := range cells {
		escaped := make([]string, len(row))
		for c, cell := range row {
			escaped[c] = numfmt.EscapeMarkdownCell(cell)
		}
		b.WriteString("| ")
		b.WriteString(strings.Join(escaped, " | "))
		b.WriteString(" |\n")
		if i == 0 {
			b.WriteString("|")
			for range row {
				b.WriteString(" --- |")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
