package kerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

func TestIOError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := kerr.NewIOError("write failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "write failed")
}

func TestParsingError_WithoutCause(t *testing.T) {
	err := kerr.NewParsingError("unexpected EOF", nil)
	assert.Equal(t, "parsing: unexpected EOF", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestUnsupportedFormatError(t *testing.T) {
	err := kerr.NewUnsupportedFormatError("application/x-unknown")
	assert.Equal(t, "unsupported format: application/x-unknown", err.Error())
}

func TestPluginError_TagsPluginName(t *testing.T) {
	cause := errors.New("boom")
	err := kerr.NewPluginError("quality-scorer", "panicked", cause)

	assert.Equal(t, "quality-scorer", err.PluginName)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quality-scorer")
}

func TestCacheError_NonFatalShape(t *testing.T) {
	err := kerr.NewCacheError("eviction scan failed", nil)
	var target *kerr.CacheError
	assert.True(t, errors.As(err, &target))
}

func TestMissingDependencyError(t *testing.T) {
	err := kerr.NewMissingDependencyError("tesseract")
	assert.Equal(t, "missing dependency: tesseract", err.Error())
}

func TestOtherError(t *testing.T) {
	err := kerr.NewOtherError("unclassified failure")
	assert.Equal(t, "unclassified failure", err.Error())
}
