package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildTestWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Item"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Price"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Widget | large"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1234.5))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExcelExtractorRendersMarkdownTable(t *testing.T) {
	e := NewExcelExtractor()
	data := buildTestWorkbook(t)

	result, err := e.ExtractBytes(context.Background(), data,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil)
	require.NoError(t, err)

	assert.Contains(t, result.Content, "## Sheet1")
	assert.Contains(t, result.Content, "| Item | Price |")
	assert.Contains(t, result.Content, "Widget \\| large", "pipes in cells must be escaped")

	require.NotNil(t, result.Metadata.Excel)
	assert.Equal(t, 1, result.Metadata.Excel.SheetCount)
	assert.Equal(t, []string{"Sheet1"}, result.Metadata.Excel.SheetNames)

	require.Len(t, result.Tables, 1)
	assert.Equal(t, 1, result.Tables[0].PageNumber)
}

func TestExcelExtractorCorruptWorkbook(t *testing.T) {
	e := NewExcelExtractor()
	_, err := e.ExtractBytes(context.Background(), []byte("not a workbook"),
		"application/vnd.ms-excel", nil)
	assert.Error(t, err)
}
