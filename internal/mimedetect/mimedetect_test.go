package mimedetect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPathExtension(t *testing.T) {
	mime, err := DetectPath("invoice.PDF", false)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
}

func TestDetectPathUnknownNoPeek(t *testing.T) {
	_, err := DetectPath("file.unknownext", false)
	assert.Error(t, err)
}

func TestDetectPathPeekSniffsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))

	mime, err := DetectPath(path, true)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
}

func TestDetectBytesJSON(t *testing.T) {
	mime := DetectBytes([]byte(`{"k":"v"}`))
	assert.Equal(t, "application/json", mime)
}

func TestValidateMimeType(t *testing.T) {
	assert.True(t, ValidateMimeType("image/anything"))
	assert.True(t, ValidateMimeType("application/pdf"))
	assert.False(t, ValidateMimeType("application/x-not-registered"))
}
