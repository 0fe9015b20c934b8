package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.True(t, cfg.UseCache)
	assert.True(t, cfg.EnableQualityScoring)
	assert.Equal(t, 300, cfg.SubprocessTimeoutSecs)
	assert.Nil(t, cfg.OCR)
	assert.Nil(t, cfg.Chunking)
}

func TestFromTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kreuzberg.toml")
	content := `
use_cache = false
force_ocr = true

[ocr]
backend = "tesseract"
language = "deu"

[chunking]
max_chars = 500
max_overlap = 50
trim = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.FromTOMLFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.UseCache)
	assert.True(t, cfg.ForceOCR)
	require.NotNil(t, cfg.OCR)
	assert.Equal(t, "tesseract", cfg.OCR.Backend)
	assert.Equal(t, "deu", cfg.OCR.Language)
	require.NotNil(t, cfg.Chunking)
	assert.Equal(t, 500, cfg.Chunking.MaxChars)
}

func TestDiscoverFrom_FindsConfigInParentDirectory(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	configPath := filepath.Join(root, "kreuzberg.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("use_cache = false\n"), 0o644))

	cfg, err := config.DiscoverFrom(nested)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.False(t, cfg.UseCache)
}

func TestDiscoverFrom_NoConfigAnywhere(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "x", "y")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := config.DiscoverFrom(nested)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kreuzberg.yaml")
	content := "use_cache: true\nforce_ocr: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.FromYAMLFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.UseCache)
}

func TestFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kreuzberg.json")
	content := `{"use_cache": false, "subprocess_timeout_secs": 60}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.FromJSONFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.UseCache)
	assert.Equal(t, 60, cfg.SubprocessTimeoutSecs)
}

func TestFromJSONBytes(t *testing.T) {
	cfg, err := config.FromJSONBytes([]byte(`{"use_cache": false, "enable_quality_processing": false}`))
	require.NoError(t, err)
	assert.False(t, cfg.UseCache)
	assert.False(t, cfg.EnableQualityScoring)
	assert.Equal(t, 300, cfg.SubprocessTimeoutSecs)
}

func TestFromJSONBytesInvalid(t *testing.T) {
	_, err := config.FromJSONBytes([]byte(`{not valid json`))
	assert.Error(t, err)
}
