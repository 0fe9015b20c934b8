// Package extractors implements the built-in format extractors: Text,
// Markdown, HTML, Excel, XML, Email, Archive,
// Legacy-Office-via-LibreOffice, Pandoc-backed formats, and PDF. Each
// implements plugins.Extractor so the registry can resolve and invoke it
// uniformly regardless of backing library.
package extractors

import (
	"context"
	"os"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// base centralizes the Plugin lifecycle methods (Name/Version/Initialize/
// Shutdown) every extractor in this package shares. Most extractors here
// have no reason to special-case file-vs-bytes, so they embed base,
// implement ExtractBytes, and make ExtractFile a one-line call to
// extractFileViaBytes below.
type base struct {
	name     string
	version  string
	priority int32
	mimes    []string
}

func (b *base) Name() string               { return b.name }
func (b *base) Version() string            { return b.version }
func (b *base) Initialize() error          { return nil }
func (b *base) Shutdown() error            { return nil }
func (b *base) SupportedMimeTypes() []string { return b.mimes }
func (b *base) Priority() int32            { return b.priority }

// readFile is shared by every extractor's ExtractFile default
// implementation.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerr.NewIOError("read file "+path, err)
	}
	return data, nil
}

// extractBytesFn is the function signature every concrete extractor's
// ExtractBytes implements; extractFileViaBytes adapts it into
// ExtractFile by reading the file first.
type extractBytesFn func(ctx context.Context, content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error)

func extractFileViaBytes(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig, fn extractBytesFn) (*types.ExtractionResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return fn(ctx, data, mimeType, cfg)
}
