package kreuzberg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Goldziher/kreuzberg-go/internal/cache"
	kconfig "github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/extractors"
	"github.com/Goldziher/kreuzberg-go/internal/mimedetect"
	"github.com/Goldziher/kreuzberg-go/internal/ocr"
	"github.com/Goldziher/kreuzberg-go/internal/pipeline"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
	"github.com/Goldziher/kreuzberg-go/internal/postprocessors"
	"github.com/Goldziher/kreuzberg-go/internal/registry"
	"github.com/Goldziher/kreuzberg-go/internal/resource"
	"github.com/Goldziher/kreuzberg-go/internal/types"
	"github.com/Goldziher/kreuzberg-go/internal/validators"
)

// Options configures how an Engine is built: where its cache lives, how
// many extractions may run concurrently in a batch, and which custom
// Late-stage hooks participate. The zero value works but yields an
// unbounded-size, never-evicted cache directory; use DefaultOptions() as
// a starting point instead.
type Options struct {
	CacheDir        string
	CacheMaxAgeDays float64
	CacheMaxSizeMB  float64
	CacheMinFreeMB  float64
	Cache           cache.Cache // overrides CacheDir et al. when set (e.g. Redis-backed)
	MaxConcurrent   int
	Hooks           []pipeline.Hook
}

// DefaultOptions returns an Options with a per-user cache directory,
// 7-day retention, a 1GB ceiling, and 8-way batch concurrency.
func DefaultOptions() Options {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Options{
		CacheDir:        filepath.Join(dir, "kreuzberg"),
		CacheMaxAgeDays: 7,
		CacheMaxSizeMB:  1024,
		CacheMinFreeMB:  512,
		MaxConcurrent:   8,
	}
}

// Engine is the extraction core: it resolves an extractor via the
// registry, reads bytes, invokes extract, runs the pipeline, and manages
// the cache and in-flight-producer guard around all of it.
type Engine struct {
	registry *registry.Registry
	cache    cache.Cache
	pipeline *pipeline.Pipeline
	sem      *semaphore.Weighted

	inflight sync.Map // fingerprint (string) -> *sync.WaitGroup
}

// New builds an Engine with the default extractor registry (every format
// extractor in internal/extractors) and default validator/post-processor
// set (internal/validators.Defaults(), internal/postprocessors' three
// plugins), wired per opts.
func New(opts Options) (*Engine, error) {
	reg := registry.New()
	ocrBackend := ocr.NewBackend()
	RegisterDefaultExtractors(reg, ocrBackend)

	var c cache.Cache
	if opts.Cache != nil {
		c = opts.Cache
	} else {
		diskCache, err := cache.NewDiskCache(opts.CacheDir, opts.CacheMaxAgeDays, opts.CacheMaxSizeMB, opts.CacheMinFreeMB)
		if err != nil {
			return nil, err
		}
		c = diskCache
	}

	pl := pipeline.New(validators.Defaults(), DefaultPostProcessors())
	for _, hook := range opts.Hooks {
		pl.AddHook(hook)
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	return &Engine{
		registry: reg,
		cache:    c,
		pipeline: pl,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
	}, nil
}

// RegisterDefaultExtractors registers every built-in format extractor:
// PDF and PPTX at priority 60, the rest at registry.DefaultPriority. Exposed so callers building a custom Engine
// (e.g. tests that want a smaller registry) can still start from the
// full built-in set and layer overrides on top via reg.RegisterWithPriority.
func RegisterDefaultExtractors(reg *registry.Registry, ocrBackend *ocr.Backend) {
	reg.Register(extractors.NewTextExtractor())
	reg.Register(extractors.NewMarkdownExtractor())
	reg.Register(extractors.NewHTMLExtractor())
	reg.Register(extractors.NewExcelExtractor())
	reg.Register(extractors.NewXMLExtractor())
	reg.Register(extractors.NewEmailExtractor())
	reg.Register(extractors.NewArchiveExtractor())
	reg.Register(extractors.NewPandocExtractor())
	reg.Register(extractors.NewLegacyOfficeExtractor())
	reg.Register(extractors.NewImageExtractor(ocrBackend))
	reg.RegisterWithPriority(extractors.NewPDFExtractor(ocrBackend), 60)
	reg.RegisterWithPriority(extractors.NewPptxExtractor(), 60)
}

// DefaultPostProcessors returns the built-in PostProcessor set: language
// detection, keyword extraction, and token reduction. Every one of these
// gates itself off via ShouldProcess when its config section is
// absent, so it's safe to register all three unconditionally and let
// per-call ExtractionConfig decide what actually runs.
func DefaultPostProcessors() []plugins.PostProcessor {
	return []plugins.PostProcessor{
		postprocessors.NewLanguageDetector(),
		postprocessors.NewKeywordExtractor(),
		postprocessors.NewTokenReducer(),
	}
}

// Registry exposes the underlying extractor registry so callers can
// Register/Remove custom extractors without reconstructing
// the Engine.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Cache exposes the underlying cache so callers (the HTTP server's
// /cache/stats and /cache/clear endpoints) can call GetStats/Clear
// directly.
func (e *Engine) Cache() cache.Cache { return e.cache }

// ExtractFile extracts a single file: detect MIME if absent, fingerprint,
// probe cache, dedupe in-flight, resolve extractor, extract, run the
// pipeline, store, return.
func (e *Engine) ExtractFile(ctx context.Context, path string, mimeType string, cfg *kconfig.ExtractionConfig) (*types.ExtractionResult, error) {
	if cfg == nil {
		cfg = kconfig.Default()
	}
	if mimeType == "" {
		detected, err := mimedetect.DetectPath(path, true)
		if err != nil {
			return nil, err
		}
		mimeType = detected
	}

	fingerprint := e.fingerprint(path, nil, mimeType, cfg)

	if cfg.UseCache {
		if result, ok := e.cacheGet(fingerprint, path); ok {
			return result, nil
		}
	}

	return e.produce(ctx, fingerprint, cfg, func() (*types.ExtractionResult, error) {
		return e.extractFileUncached(ctx, path, mimeType, cfg)
	})
}

// ExtractBytes has the same contract as ExtractFile but works over an
// in-memory buffer, with no source-mtime
// invalidation since there is no source file.
func (e *Engine) ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *kconfig.ExtractionConfig) (*types.ExtractionResult, error) {
	if cfg == nil {
		cfg = kconfig.Default()
	}
	if mimeType == "" {
		mimeType = mimedetect.DetectBytes(content)
	}

	fingerprint := e.fingerprint("", content, mimeType, cfg)

	if cfg.UseCache {
		if result, ok := e.cacheGet(fingerprint, ""); ok {
			return result, nil
		}
	}

	return e.produce(ctx, fingerprint, cfg, func() (*types.ExtractionResult, error) {
		return e.extractBytesUncached(ctx, content, mimeType, cfg)
	})
}

// produce enforces single-producer semantics per fingerprint. A
// concurrent caller for the same fingerprint waits on a shared WaitGroup
// and then re-probes the cache; if the producer failed (so the cache is
// still a miss), the waiter falls through and becomes a new producer
// itself.
func (e *Engine) produce(ctx context.Context, fingerprint string, cfg *kconfig.ExtractionConfig, fn func() (*types.ExtractionResult, error)) (*types.ExtractionResult, error) {
	wg := &sync.WaitGroup{}
	wg.Add(1)
	actual, loaded := e.inflight.LoadOrStore(fingerprint, wg)

	if loaded {
		actualWG := actual.(*sync.WaitGroup)
		actualWG.Wait()
		if cfg.UseCache {
			if result, ok := e.cacheGet(fingerprint, ""); ok {
				return result, nil
			}
		}
		return e.produce(ctx, fingerprint, cfg, fn)
	}

	if cfg.UseCache {
		e.cache.MarkProcessing(fingerprint)
	}
	defer func() {
		if cfg.UseCache {
			e.cache.MarkComplete(fingerprint)
		}
		e.inflight.Delete(fingerprint)
		wg.Done()
	}()

	result, err := fn()
	if err != nil {
		return nil, err
	}

	if cfg.UseCache {
		if encoded, encErr := encodeResult(result); encErr == nil {
			// Cache write failures are swallowed: the caller still
			// gets their result either way.
			_ = e.cache.Set(fingerprint, encoded, "")
		}
	}

	return result, nil
}

func (e *Engine) extractFileUncached(ctx context.Context, path, mimeType string, cfg *kconfig.ExtractionConfig) (*types.ExtractionResult, error) {
	extractor, err := e.registry.Get(mimeType)
	if err != nil {
		return nil, err
	}

	result, err := extractor.ExtractFile(ctx, path, mimeType, cfg)
	if err != nil {
		return nil, err
	}

	if err := e.pipeline.Run(ctx, result, cfg); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) extractBytesUncached(ctx context.Context, content []byte, mimeType string, cfg *kconfig.ExtractionConfig) (*types.ExtractionResult, error) {
	extractor, err := e.registry.Get(mimeType)
	if err != nil {
		return nil, err
	}

	result, err := extractor.ExtractBytes(ctx, content, mimeType, cfg)
	if err != nil {
		return nil, err
	}

	if err := e.pipeline.Run(ctx, result, cfg); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) cacheGet(fingerprint, sourcePath string) (*types.ExtractionResult, bool) {
	data, ok, err := e.cache.Get(fingerprint, sourcePath)
	if err != nil || !ok {
		// Cache read errors degrade to a miss.
		return nil, false
	}
	result, decErr := decodeResult(data)
	if decErr != nil {
		return nil, false
	}
	return result, true
}

// fingerprint computes the cache key: a hash over {bytes-hash or
// path+mtime, mime, canonical config serialization}.
func (e *Engine) fingerprint(path string, content []byte, mimeType string, cfg *kconfig.ExtractionConfig) string {
	cfgParts := cfg.Fingerprint()
	parts := make([]cache.KeyPart, 0, len(cfgParts)+2)
	if content != nil {
		parts = append(parts, cache.KeyPart{Key: "content_hash", Value: fmt.Sprintf("%016x", cache.FastHash(content))})
	} else {
		parts = append(parts, cache.KeyPart{Key: "path", Value: path})
		if info, err := os.Stat(path); err == nil {
			parts = append(parts, cache.KeyPart{Key: "mtime", Value: info.ModTime().UnixNano()})
		}
	}
	parts = append(parts, cache.KeyPart{Key: "mime", Value: mimeType})
	for _, fp := range cfgParts {
		parts = append(parts, cache.KeyPart{Key: fp.Key, Value: fp.Value})
	}
	return cache.GenerateCacheKey(parts)
}

// BatchExtractFiles fans out up to the Engine's configured concurrency
// limit, preserving input order in the output regardless of completion
// order, and turning per-item failures into an error-tagged BatchItem
// rather than aborting the batch.
func (e *Engine) BatchExtractFiles(ctx context.Context, paths []string, cfg *kconfig.ExtractionConfig) []types.BatchItem {
	return e.batch(ctx, len(paths), func(i int) (*types.ExtractionResult, error) {
		return e.ExtractFile(ctx, paths[i], "", cfg)
	})
}

// BatchExtractBytes is BatchExtractFiles's in-memory counterpart.
func (e *Engine) BatchExtractBytes(ctx context.Context, contents [][]byte, mimeTypes []string, cfg *kconfig.ExtractionConfig) []types.BatchItem {
	return e.batch(ctx, len(contents), func(i int) (*types.ExtractionResult, error) {
		mimeType := ""
		if i < len(mimeTypes) {
			mimeType = mimeTypes[i]
		}
		return e.ExtractBytes(ctx, contents[i], mimeType, cfg)
	})
}

func (e *Engine) batch(ctx context.Context, n int, extractOne func(i int) (*types.ExtractionResult, error)) []types.BatchItem {
	items := make([]types.BatchItem, n)
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			if err := e.sem.Acquire(ctx, 1); err != nil {
				items[idx] = types.BatchItem{Index: idx, Success: false, Error: err.Error()}
				return
			}
			defer e.sem.Release(1)

			result, err := extractOne(idx)
			if err != nil {
				items[idx] = types.BatchItem{
					Index:   idx,
					Success: false,
					Error:   err.Error(),
					Result: &types.ExtractionResult{
						Content:  err.Error(),
						MimeType: "application/octet-stream",
						Metadata: types.Metadata{Error: err.Error()},
					},
				}
				return
			}
			items[idx] = types.BatchItem{Index: idx, Success: true, Result: result}
		}(i)
	}

	wg.Wait()
	return items
}

// BatchExtractFilesWithStats runs BatchExtractFiles under a
// resource.Monitor, returning the same ordered results plus the sampled
// resource.Stats (peak/P50/P95/P99 memory, average goroutine count) for
// the whole batch.
func (e *Engine) BatchExtractFilesWithStats(ctx context.Context, paths []string, cfg *kconfig.ExtractionConfig) ([]types.BatchItem, resource.Stats) {
	var items []types.BatchItem
	stats, _ := resource.Measure(0, func() error {
		items = e.BatchExtractFiles(ctx, paths, cfg)
		return nil
	})
	return items, stats
}

// SubprocessTimeout returns 300s, or cfg.SubprocessTimeoutSecs when set:
// the same rule the LibreOffice and Pandoc bridges apply to their own
// subprocesses. The HTTP server uses it to bound each /extract request;
// the OCR bridge keeps its own fixed 120s timeout.
func SubprocessTimeout(cfg *kconfig.ExtractionConfig) time.Duration {
	if cfg != nil && cfg.SubprocessTimeoutSecs > 0 {
		return time.Duration(cfg.SubprocessTimeoutSecs) * time.Second
	}
	return 300 * time.Second
}

// ValidateMimeType reports whether a MIME string is one the engine can
// route, without forcing callers to import internal/mimedetect.
func ValidateMimeType(mimeType string) bool {
	return mimedetect.ValidateMimeType(mimeType)
}
