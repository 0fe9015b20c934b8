package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

func TestUTF8ValidatorAcceptsValidContent(t *testing.T) {
	v := NewUTF8Validator()
	result := &types.ExtractionResult{Content: "héllo wörld", MimeType: "text/plain"}
	assert.NoError(t, v.Validate(context.Background(), result, config.Default()))
}

func TestUTF8ValidatorRejectsInvalidBytes(t *testing.T) {
	v := NewUTF8Validator()
	result := &types.ExtractionResult{Content: string([]byte{0xff, 0xfe, 0xfd}), MimeType: "text/plain"}
	assert.Error(t, v.Validate(context.Background(), result, config.Default()))
}

func TestMimeTypeValidatorRejectsEmptyMime(t *testing.T) {
	v := NewMimeTypeValidator()
	result := &types.ExtractionResult{Content: "ok"}
	assert.Error(t, v.Validate(context.Background(), result, config.Default()))

	result.MimeType = "text/plain"
	assert.NoError(t, v.Validate(context.Background(), result, config.Default()))
}

func TestDefaultsOrderedByPriority(t *testing.T) {
	vs := Defaults()
	require.Len(t, vs, 2)
	assert.Greater(t, vs[0].Priority(), vs[1].Priority())
}
