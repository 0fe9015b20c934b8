// Package config defines ExtractionConfig and the kreuzberg.toml/yaml/json
// discovery walk.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

// OCRConfig selects and parameterizes the OCR backend used when native
// text extraction is unavailable or force_ocr is set.
type OCRConfig struct {
	Backend  string `toml:"backend" yaml:"backend" json:"backend"`
	Language string `toml:"language" yaml:"language" json:"language"`
}

func defaultOCRLanguage(c *OCRConfig) {
	if c.Language == "" {
		c.Language = "eng"
	}
}

// ChunkingConfig parameterizes the text/markdown chunkers.
type ChunkingConfig struct {
	MaxChars    int  `toml:"max_chars" yaml:"max_chars" json:"max_chars"`
	MaxOverlap  int  `toml:"max_overlap" yaml:"max_overlap" json:"max_overlap"`
	Trim        bool `toml:"trim" yaml:"trim" json:"trim"`
	UseMarkdown bool `toml:"use_markdown" yaml:"use_markdown" json:"use_markdown"`
}

// DefaultChunkingConfig is 1000 characters with 200 overlap.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{MaxChars: 1000, MaxOverlap: 200, Trim: true}
}

// ImageExtractionConfig controls whether embedded images are pulled out of
// containers such as PPTX/DOCX, and bounds the PPTX resource cache.
type ImageExtractionConfig struct {
	Enabled         bool `toml:"enabled" yaml:"enabled" json:"enabled"`
	MaxCachedImages int  `toml:"max_cached_images" yaml:"max_cached_images" json:"max_cached_images"`
	MaxCacheSizeMB  int  `toml:"max_cache_size_mb" yaml:"max_cache_size_mb" json:"max_cache_size_mb"`
}

// DefaultImageConfig is a 32-entry, 64MB LRU resource cache for PPTX
// image refs.
func DefaultImageConfig() ImageExtractionConfig {
	return ImageExtractionConfig{MaxCachedImages: 32, MaxCacheSizeMB: 64}
}

// KeywordConfig parameterizes the keyword-extraction post-processor.
type KeywordConfig struct {
	MaxKeywords    int      `toml:"max_keywords" yaml:"max_keywords" json:"max_keywords"`
	MinWordLength  int      `toml:"min_word_length" yaml:"min_word_length" json:"min_word_length"`
	StopwordsExtra []string `toml:"stopwords_extra" yaml:"stopwords_extra" json:"stopwords_extra"`
}

// DefaultKeywordConfig is top 10 keywords of 3+ characters.
func DefaultKeywordConfig() KeywordConfig {
	return KeywordConfig{MaxKeywords: 10, MinWordLength: 3}
}

// LanguageDetectionConfig parameterizes the language-detection
// post-processor.
type LanguageDetectionConfig struct {
	TopK             int     `toml:"top_k" yaml:"top_k" json:"top_k"`
	MinConfidence    float64 `toml:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	LowConfidenceAll bool    `toml:"low_confidence_as_unknown" yaml:"low_confidence_as_unknown" json:"low_confidence_as_unknown"`
}

// DefaultLanguageDetectionConfig is the single best-guess language, with
// a 0.5 confidence floor.
func DefaultLanguageDetectionConfig() LanguageDetectionConfig {
	return LanguageDetectionConfig{TopK: 1, MinConfidence: 0.5}
}

// TokenReductionConfig configures the token-reduction post-processor. See
// internal/tokenreduction for the reduction levels.
type TokenReductionConfig struct {
	Level              string   `toml:"level" yaml:"level" json:"level"`
	PreserveMarkdown   bool     `toml:"preserve_markdown" yaml:"preserve_markdown" json:"preserve_markdown"`
	PreserveCode       bool     `toml:"preserve_code" yaml:"preserve_code" json:"preserve_code"`
	CustomStopwords    []string `toml:"custom_stopwords" yaml:"custom_stopwords" json:"custom_stopwords"`
	PreservePatterns   []string `toml:"preserve_patterns" yaml:"preserve_patterns" json:"preserve_patterns"`
	TargetReduction    *float64 `toml:"target_reduction" yaml:"target_reduction" json:"target_reduction"`
	EnableSemanticMode bool     `toml:"enable_semantic_clustering" yaml:"enable_semantic_clustering" json:"enable_semantic_clustering"`
}

// ExtractionConfig is the single configuration object threaded through
// the registry, pipeline, and cache.
type ExtractionConfig struct {
	UseCache              bool                     `toml:"use_cache" yaml:"use_cache" json:"use_cache"`
	EnableQualityScoring  bool                     `toml:"enable_quality_processing" yaml:"enable_quality_processing" json:"enable_quality_processing"`
	OCR                   *OCRConfig               `toml:"ocr" yaml:"ocr" json:"ocr"`
	ForceOCR              bool                     `toml:"force_ocr" yaml:"force_ocr" json:"force_ocr"`
	Chunking              *ChunkingConfig          `toml:"chunking" yaml:"chunking" json:"chunking"`
	Images                *ImageExtractionConfig   `toml:"images" yaml:"images" json:"images"`
	TokenReduction        *TokenReductionConfig    `toml:"token_reduction" yaml:"token_reduction" json:"token_reduction"`
	Keywords              *KeywordConfig           `toml:"keywords" yaml:"keywords" json:"keywords"`
	LanguageDetection     *LanguageDetectionConfig `toml:"language_detection" yaml:"language_detection" json:"language_detection"`
	SubprocessTimeoutSecs int                      `toml:"subprocess_timeout_secs" yaml:"subprocess_timeout_secs" json:"subprocess_timeout_secs"`
	MaxConcurrent         int                      `toml:"max_concurrent" yaml:"max_concurrent" json:"max_concurrent"`
	PptxSlideComments     bool                     `toml:"pptx_slide_comments" yaml:"pptx_slide_comments" json:"pptx_slide_comments"`
}

// Default returns the stock ExtractionConfig: caching and quality
// processing on, no OCR/chunking/images unless requested, a 300s
// subprocess timeout.
func Default() *ExtractionConfig {
	return &ExtractionConfig{
		UseCache:              true,
		EnableQualityScoring:  true,
		SubprocessTimeoutSecs: 300,
		MaxConcurrent:         8,
		PptxSlideComments:     true,
	}
}

const configFileName = "kreuzberg.toml"

// Discover walks from the current working directory up to the filesystem
// root looking for kreuzberg.toml, returning (nil, nil) if none is found
// anywhere in the chain.
func Discover() (*ExtractionConfig, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, kerr.NewIOError("failed to determine working directory", err)
	}
	return DiscoverFrom(dir)
}

// DiscoverFrom walks upward from start instead of the process cwd; exposed
// separately so tests don't need to chdir the whole process.
func DiscoverFrom(start string) (*ExtractionConfig, error) {
	dir := start
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return FromTOMLFile(candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// FromTOMLFile reads and parses a kreuzberg.toml file.
func FromTOMLFile(path string) (*ExtractionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerr.NewIOError("failed to read config file "+path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, kerr.NewValidationError("invalid TOML config", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// FromYAMLFile reads and parses a kreuzberg.yaml/.yml file.
func FromYAMLFile(path string) (*ExtractionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerr.NewIOError("failed to read config file "+path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, kerr.NewValidationError("invalid YAML config", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// FromJSONFile reads and parses a kreuzberg.json file.
func FromJSONFile(path string) (*ExtractionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerr.NewIOError("failed to read config file "+path, err)
	}

	cfg := Default()
	if err := jsonUnmarshal(data, cfg); err != nil {
		return nil, kerr.NewValidationError("invalid JSON config", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// FromJSONBytes parses a JSON-encoded ExtractionConfig payload that did
// not come from a file, such as the HTTP API's POST /extract "config"
// field.
func FromJSONBytes(data []byte) (*ExtractionConfig, error) {
	cfg := Default()
	if err := jsonUnmarshal(data, cfg); err != nil {
		return nil, kerr.NewValidationError("invalid JSON config", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *ExtractionConfig) {
	if cfg.OCR != nil {
		defaultOCRLanguage(cfg.OCR)
	}
	if cfg.SubprocessTimeoutSecs == 0 {
		cfg.SubprocessTimeoutSecs = 300
	}
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = 8
	}
}

// Fingerprint lists cfg's options as the (name, value) parts used by the
// extraction core's fingerprinting. The parts are returned unsorted and
// with their raw Go values; cache.GenerateCacheKey sorts them by name and
// canonicalizes each value to its textual form.
// Kept here (rather than in package cache) so the config package is the
// single source of truth for "what does this option serialize to."
func (c *ExtractionConfig) Fingerprint() []FingerprintPart {
	parts := []FingerprintPart{
		{Key: "use_cache", Value: c.UseCache},
		{Key: "enable_quality_processing", Value: c.EnableQualityScoring},
		{Key: "force_ocr", Value: c.ForceOCR},
		{Key: "subprocess_timeout_secs", Value: c.SubprocessTimeoutSecs},
	}
	if c.OCR != nil {
		parts = append(parts,
			FingerprintPart{Key: "ocr_backend", Value: c.OCR.Backend},
			FingerprintPart{Key: "ocr_language", Value: c.OCR.Language},
		)
	}
	if c.Chunking != nil {
		parts = append(parts,
			FingerprintPart{Key: "chunking_max_chars", Value: c.Chunking.MaxChars},
			FingerprintPart{Key: "chunking_max_overlap", Value: c.Chunking.MaxOverlap},
			FingerprintPart{Key: "chunking_markdown", Value: c.Chunking.UseMarkdown},
		)
	}
	if c.TokenReduction != nil {
		parts = append(parts, FingerprintPart{Key: "token_reduction_level", Value: c.TokenReduction.Level})
	}
	if c.Keywords != nil {
		parts = append(parts, FingerprintPart{Key: "keywords_max", Value: c.Keywords.MaxKeywords})
	}
	if c.LanguageDetection != nil {
		parts = append(parts, FingerprintPart{Key: "language_detection_top_k", Value: c.LanguageDetection.TopK})
	}
	return parts
}

// FingerprintPart is a (name, canonical-value) pair; it is the config
// package's view of cache.KeyPart so config doesn't import cache (cache
// depends on nothing above it, config stays a leaf too).
type FingerprintPart struct {
	Key   string
	Value any
}
