// Package plugins defines the interfaces every extractor, post-processor,
// validator, and OCR backend implements. Implementations are shared
// across goroutines; any mutable state a plugin needs must be guarded by
// a mutex/atomic internally.
package plugins

import (
	"context"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// Plugin is the base capability every registered component exposes.
type Plugin interface {
	Name() string
	Version() string
	Initialize() error
	Shutdown() error
}

// DescribedPlugin is an optional extension Plugin implementations may add;
// the registry falls back to empty strings when a plugin doesn't implement
// it.
type DescribedPlugin interface {
	Description() string
	Author() string
}

// Extractor is the document-extraction capability set: a named,
// versioned, priority-ranked plugin that turns bytes or a file into an
// ExtractionResult for the MIME types it supports.
type Extractor interface {
	Plugin
	ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error)
	ExtractFile(ctx context.Context, path string, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error)
	SupportedMimeTypes() []string
	Priority() int32
}

// DocumentExtractor is an alias kept for readability at call sites that
// talk about "the document extractor for this MIME type" rather than "the
// extractor" in the abstract.
type DocumentExtractor = Extractor

// ProcessingStage orders post-processors independent of registration
// order.
type ProcessingStage int

const (
	StageEarly ProcessingStage = iota
	StageMiddle
	StageLate
)

func (s ProcessingStage) String() string {
	switch s {
	case StageEarly:
		return "early"
	case StageMiddle:
		return "middle"
	case StageLate:
		return "late"
	default:
		return "unknown"
	}
}

// PostProcessor mutates an ExtractionResult in place after extraction.
// Errors are non-fatal: the pipeline catches them and appends to
// metadata.error.
type PostProcessor interface {
	Plugin
	Stage() ProcessingStage
	ShouldProcess(result *types.ExtractionResult, cfg *config.ExtractionConfig) bool
	EstimatedDurationMS(result *types.ExtractionResult) int64
	Process(ctx context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) error
}

// Validator runs before quality scoring/chunking/post-processors. A failing
// validator aborts the pipeline.
type Validator interface {
	Validate(ctx context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) error
	ShouldValidate(result *types.ExtractionResult, cfg *config.ExtractionConfig) bool
	Priority() int32
}

// OCRBackendType names the supported OCR engines; only Tesseract is wired
// end-to-end today, but the type is kept open for future backends.
type OCRBackendType string

const (
	OCRBackendTesseract OCRBackendType = "tesseract"
)

// OCRBackend renders already-decoded image bytes to text.
type OCRBackend interface {
	Plugin
	BackendType() OCRBackendType
	ProcessImage(ctx context.Context, imageBytes []byte, language string) (string, error)
}
