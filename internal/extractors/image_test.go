package extractors

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
)

// stubOCRBackend stands in for a Tesseract installation so the image
// extractor is testable on machines without one.
type stubOCRBackend struct {
	text     string
	err      error
	language string
}

func (s *stubOCRBackend) Name() string      { return "stub-ocr" }
func (s *stubOCRBackend) Version() string   { return "0.0.0" }
func (s *stubOCRBackend) Initialize() error { return nil }
func (s *stubOCRBackend) Shutdown() error   { return nil }

func (s *stubOCRBackend) BackendType() plugins.OCRBackendType { return plugins.OCRBackendTesseract }

func (s *stubOCRBackend) ProcessImage(_ context.Context, _ []byte, language string) (string, error) {
	s.language = language
	return s.text, s.err
}

func buildTestPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageExtractorRunsOCRAndDecodesMetadata(t *testing.T) {
	stub := &stubOCRBackend{text: "recognized text\n"}
	e := NewImageExtractor(stub)

	result, err := e.ExtractBytes(context.Background(), buildTestPNG(t), "image/png", nil)
	require.NoError(t, err)

	assert.Equal(t, "recognized text", result.Content)
	assert.Equal(t, "image/png", result.MimeType)
	require.NotNil(t, result.Metadata.Image)
	assert.Equal(t, 12, result.Metadata.Image.Width)
	assert.Equal(t, 8, result.Metadata.Image.Height)
	assert.Equal(t, "png", result.Metadata.Image.Format)
}

func TestImageExtractorPassesConfiguredLanguage(t *testing.T) {
	stub := &stubOCRBackend{text: "ok"}
	e := NewImageExtractor(stub)

	cfg := config.Default()
	cfg.OCR = &config.OCRConfig{Backend: "tesseract", Language: "deu"}
	_, err := e.ExtractBytes(context.Background(), buildTestPNG(t), "image/png", cfg)
	require.NoError(t, err)
	assert.Equal(t, "deu", stub.language)
}

func TestImageExtractorPropagatesOCRFailure(t *testing.T) {
	stub := &stubOCRBackend{err: assert.AnError}
	e := NewImageExtractor(stub)

	_, err := e.ExtractBytes(context.Background(), buildTestPNG(t), "image/png", nil)
	assert.Error(t, err)
}

func TestImageExtractorUndecodableImageStillReturnsText(t *testing.T) {
	stub := &stubOCRBackend{text: "text from a format image.DecodeConfig doesn't know"}
	e := NewImageExtractor(stub)

	result, err := e.ExtractBytes(context.Background(), []byte("not an image"), "image/x-exotic", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Content)
	assert.Nil(t, result.Metadata.Image)
}
