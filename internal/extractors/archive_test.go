package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f1, err := w.Create("readme.txt")
	require.NoError(t, err)
	_, err = f1.Write([]byte("hello archive"))
	require.NoError(t, err)

	f2, err := w.Create("data.bin")
	require.NoError(t, err)
	_, err = f2.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestArchiveExtractorZipEntries(t *testing.T) {
	e := NewArchiveExtractor()
	data := buildTestZip(t)

	result, err := e.ExtractBytes(context.Background(), data, "application/zip", nil)
	require.NoError(t, err)

	entries, ok := result.Metadata.Additional["entries"].([]ArchiveEntry)
	require.True(t, ok)
	require.Len(t, entries, 2)

	var readme *ArchiveEntry
	for i := range entries {
		if entries[i].Name == "readme.txt" {
			readme = &entries[i]
		}
	}
	require.NotNil(t, readme)
	assert.Equal(t, "hello archive", readme.Text)
	assert.Contains(t, result.Content, "readme.txt")
}

func TestArchiveExtractorCorruptArchive(t *testing.T) {
	e := NewArchiveExtractor()
	_, err := e.ExtractBytes(context.Background(), []byte("not a zip"), "application/zip", nil)
	assert.Error(t, err)
}
