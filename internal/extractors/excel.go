package extractors

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/numfmt"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// ExcelExtractor renders each sheet of a workbook as a Markdown table,
// with numeric and datetime cells formatted canonically and pipe
// characters escaped.
type ExcelExtractor struct{ base }

func NewExcelExtractor() *ExcelExtractor {
	return &ExcelExtractor{base{
		name:     "excel",
		version:  "1.0.0",
		priority: 50,
		mimes: []string{
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel",
		},
	}}
}

func (e *ExcelExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

func (e *ExcelExtractor) ExtractBytes(_ context.Context, content []byte, mimeType string, _ *config.ExtractionConfig) (*types.ExtractionResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, kerr.NewParsingError("open workbook", err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	result := &types.ExtractionResult{
		MimeType: mimeType,
		Metadata: types.Metadata{
			Excel: &types.ExcelMetadata{SheetNames: sheetNames, SheetCount: len(sheetNames)},
		},
	}

	var content2 strings.Builder
	for i, sheet := range sheetNames {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}

		canonicalRows := canonicalizeRows(f, sheet, rows)
		md := renderSheetMarkdown(canonicalRows)

		if i > 0 {
			content2.WriteString("\n\n")
		}
		content2.WriteString("## " + sheet + "\n\n")
		content2.WriteString(md)

		if len(canonicalRows) > 0 {
			result.Tables = append(result.Tables, types.Table{
				Cells:      canonicalRows,
				Markdown:   md,
				PageNumber: i + 1,
			})
		}
	}

	result.Content = content2.String()
	return result, nil
}

// canonicalizeRows reformats every cell in rows through excelize's own
// cell-type inspection, canonicalizing numeric cells via
// numfmt.FormatNumericCell (the library already renders date-formatted
// cells as their display string, so FormatDatetimeCell is reserved for
// callers that need the raw Excel serial rather than excelize's
// pre-rendered text).
func canonicalizeRows(f *excelize.File, sheet string, rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for r, row := range rows {
		outRow := make([]string, len(row))
		for c, cell := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err == nil {
				if cellType, typeErr := f.GetCellType(sheet, axis); typeErr == nil && cellType == excelize.CellTypeNumber {
					if _, numErr := strconv.ParseFloat(cell, 64); numErr == nil {
						cell = numfmt.FormatNumericCell(cell)
					}
				}
			}
			outRow[c] = cell
		}
		out[r] = outRow
	}
	return out
}

// renderSheetMarkdown emits rows as a GitHub-flavored Markdown table,
// treating the first row as the header and escaping pipes/newlines in
// every cell.
func renderSheetMarkdown(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	for i, row := range rows {
		padded := make([]string, width)
		for c := 0; c < width; c++ {
			if c < len(row) {
				padded[c] = numfmt.EscapeMarkdownCell(row[c])
			}
		}
		b.WriteString("| " + strings.Join(padded, " | ") + " |\n")
		if i == 0 {
			b.WriteString("|")
			for c := 0; c < width; c++ {
				b.WriteString(" --- |")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
