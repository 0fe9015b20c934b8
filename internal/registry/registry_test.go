package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/registry"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// stubExtractor is the minimal fake used throughout this suite, standing in
// for the format-specific extractors exercised elsewhere (pdf.go, html.go,
// ...). It only needs to satisfy plugins.Extractor.
type stubExtractor struct {
	name      string
	mimeTypes []string
}

func (s *stubExtractor) Name() string    { return s.name }
func (s *stubExtractor) Version() string { return "0.0.0" }
func (s *stubExtractor) Initialize() error { return nil }
func (s *stubExtractor) Shutdown() error   { return nil }
func (s *stubExtractor) SupportedMimeTypes() []string { return s.mimeTypes }
func (s *stubExtractor) Priority() int32 { return registry.DefaultPriority }

func (s *stubExtractor) ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return &types.ExtractionResult{Content: s.name, MimeType: mimeType}, nil
}

func (s *stubExtractor) ExtractFile(ctx context.Context, path string, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return &types.ExtractionResult{Content: s.name, MimeType: mimeType}, nil
}

func extractor(name string, mimeTypes ...string) *stubExtractor {
	return &stubExtractor{name: name, mimeTypes: mimeTypes}
}

func TestRegisterAndGet(t *testing.T) {
	r := registry.New()
	r.Register(extractor("pdf", "application/pdf"))

	got, err := r.Get("application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", got.Name())
}

func TestPriorityBasedSelection(t *testing.T) {
	r := registry.New()
	r.RegisterWithPriority(extractor("low", "application/pdf"), 10)
	r.RegisterWithPriority(extractor("high", "application/pdf"), 90)

	got, err := r.Get("application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "high", got.Name())
}

func TestDefaultPriority(t *testing.T) {
	r := registry.New()
	r.Register(extractor("pdf", "application/pdf"))

	got, err := r.Get("application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", got.Name())
	assert.Equal(t, registry.DefaultPriority, got.Priority())
}

func TestPrefixMatching(t *testing.T) {
	r := registry.New()
	r.Register(extractor("generic-image", "image/*"))

	got, err := r.Get("image/png")
	require.NoError(t, err)
	assert.Equal(t, "generic-image", got.Name())
}

func TestPrefixMatchingWithPriority(t *testing.T) {
	r := registry.New()
	r.RegisterWithPriority(extractor("low-image", "image/*"), 10)
	r.RegisterWithPriority(extractor("high-image", "image/*"), 90)

	got, err := r.Get("image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "high-image", got.Name())
}

func TestExactMatchPrecedenceOverPrefix(t *testing.T) {
	r := registry.New()
	r.RegisterWithPriority(extractor("generic-image", "image/*"), 90)
	r.RegisterWithPriority(extractor("png-specific", "image/png"), 10)

	got, err := r.Get("image/png")
	require.NoError(t, err)
	assert.Equal(t, "png-specific", got.Name(), "exact match wins even over a higher-priority prefix match")
}

func TestUnsupportedMimeType(t *testing.T) {
	r := registry.New()
	r.Register(extractor("pdf", "application/pdf"))

	_, err := r.Get("application/x-nonexistent")
	require.Error(t, err)
	var unsupported *kerr.UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "application/x-nonexistent", unsupported.MimeType)
}

func TestRemove(t *testing.T) {
	r := registry.New()
	r.Register(extractor("pdf", "application/pdf"))
	r.Remove("pdf")

	assert.False(t, r.Supports("application/pdf"))
}

func TestRemoveWithMultiplePriorities(t *testing.T) {
	r := registry.New()
	r.RegisterWithPriority(extractor("pdf", "application/pdf"), 10)
	r.RegisterWithPriority(extractor("pdf", "application/pdf"), 90)

	r.Remove("pdf")

	assert.False(t, r.Supports("application/pdf"))
}

func TestRemoveRegistrationSpecific(t *testing.T) {
	r := registry.New()
	r.RegisterWithPriority(extractor("pdf-low", "application/pdf"), 10)
	r.RegisterWithPriority(extractor("pdf-high", "application/pdf"), 90)

	priority := int32(90)
	r.RemoveRegistration("application/pdf", "pdf-high", &priority)

	got, err := r.Get("application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-low", got.Name())
}

func TestRemoveRegistrationAllPriorities(t *testing.T) {
	r := registry.New()
	r.RegisterWithPriority(extractor("pdf", "application/pdf"), 10)
	r.RegisterWithPriority(extractor("pdf", "application/pdf"), 90)

	r.RemoveRegistration("application/pdf", "pdf", nil)

	assert.False(t, r.Supports("application/pdf"))
}

func TestSupports(t *testing.T) {
	r := registry.New()
	r.Register(extractor("pdf", "application/pdf"))

	assert.True(t, r.Supports("application/pdf"))
	assert.False(t, r.Supports("application/msword"))
}

func TestMimeTypes(t *testing.T) {
	r := registry.New()
	r.Register(extractor("pdf", "application/pdf"))
	r.Register(extractor("html", "text/html"))

	assert.Equal(t, []string{"application/pdf", "text/html"}, r.MimeTypes())
}

func TestInsertionOrderTiebreak(t *testing.T) {
	r := registry.New()
	r.RegisterWithPriority(extractor("first", "application/pdf"), 50)
	r.RegisterWithPriority(extractor("second", "application/pdf"), 50)

	got, err := r.Get("application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name(), "equal priority breaks tie by earliest registration")
}
