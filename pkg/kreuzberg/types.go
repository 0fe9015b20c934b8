package kreuzberg

import (
	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// Re-exported so callers never need to import the internal packages
// directly.
type (
	ExtractionResult = types.ExtractionResult
	Metadata         = types.Metadata
	Table            = types.Table
	PDFMetadata      = types.PDFMetadata
	PptxMetadata     = types.PptxMetadata
	ImageMetadata    = types.ImageMetadata
	ExcelMetadata    = types.ExcelMetadata
	EmailMetadata    = types.EmailMetadata
	BatchItem        = types.BatchItem

	ExtractionConfig        = config.ExtractionConfig
	OCRConfig                = config.OCRConfig
	ChunkingConfig           = config.ChunkingConfig
	ImageExtractionConfig    = config.ImageExtractionConfig
	KeywordConfig            = config.KeywordConfig
	LanguageDetectionConfig  = config.LanguageDetectionConfig
	TokenReductionConfig     = config.TokenReductionConfig
)

// DefaultConfig mirrors config.Default(): caching and quality processing
// on, no OCR/chunking/images unless requested, a 300s subprocess timeout.
func DefaultConfig() *ExtractionConfig {
	return config.Default()
}

// DiscoverConfig walks from the working directory up to the filesystem
// root looking for kreuzberg.toml; the first hit wins.
func DiscoverConfig() (*ExtractionConfig, error) {
	return config.Discover()
}
