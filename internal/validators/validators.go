// Package validators implements the default Validator set that runs at
// the start of the pipeline. A failing validator aborts the pipeline
// with its error untouched.
package validators

import (
	"context"
	"unicode/utf8"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// UTF8Validator rejects a result whose Content is not valid UTF-8.
type UTF8Validator struct{}

func NewUTF8Validator() *UTF8Validator { return &UTF8Validator{} }

func (v *UTF8Validator) Validate(_ context.Context, result *types.ExtractionResult, _ *config.ExtractionConfig) error {
	if !utf8.ValidString(result.Content) {
		return kerr.NewValidationError("extracted content is not valid UTF-8", nil)
	}
	return nil
}

func (v *UTF8Validator) ShouldValidate(*types.ExtractionResult, *config.ExtractionConfig) bool { return true }
func (v *UTF8Validator) Priority() int32                                                       { return 100 }

// MimeTypeValidator rejects a result with an empty MimeType.
type MimeTypeValidator struct{}

func NewMimeTypeValidator() *MimeTypeValidator { return &MimeTypeValidator{} }

func (v *MimeTypeValidator) Validate(_ context.Context, result *types.ExtractionResult, _ *config.ExtractionConfig) error {
	if result.MimeType == "" {
		return kerr.NewValidationError("extraction result is missing a mime type", nil)
	}
	return nil
}

func (v *MimeTypeValidator) ShouldValidate(*types.ExtractionResult, *config.ExtractionConfig) bool {
	return true
}
func (v *MimeTypeValidator) Priority() int32 { return 90 }

var (
	_ plugins.Validator = (*UTF8Validator)(nil)
	_ plugins.Validator = (*MimeTypeValidator)(nil)
)

// Defaults returns the built-in validator set, highest priority first;
// the pipeline itself re-sorts by priority so order here doesn't matter
// for correctness, only readability.
func Defaults() []plugins.Validator {
	return []plugins.Validator{NewUTF8Validator(), NewMimeTypeValidator()}
}
