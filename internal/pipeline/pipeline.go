// Package pipeline implements the staged post-extraction pipeline:
// validators (priority descending), then quality scoring, then chunking,
// then stage-ordered post-processors (Early, Middle, Late), then custom
// hooks.
package pipeline

import (
	"context"
	"sort"
	"strconv"

	"github.com/Goldziher/kreuzberg-go/internal/chunking"
	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// Hook is a Late-stage user-supplied callback that runs after every
// registered post-processor. Hooks share the
// post-processor's non-fatal error semantics: a failing hook is recorded
// in metadata.error rather than aborting the pipeline.
type Hook func(ctx context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) error

// Pipeline sequences validators, quality processing, chunking,
// stage-grouped post-processors, and custom hooks over one
// ExtractionResult at a time; stages never interleave within one result.
type Pipeline struct {
	validators     []plugins.Validator
	postProcessors []plugins.PostProcessor
	hooks          []Hook
}

// New builds a Pipeline from explicit validator/post-processor sets. The
// caller decides which built-ins (internal/validators.Defaults(),
// internal/postprocessors' plugins) to include; Pipeline itself holds no
// global defaults so tests can compose a minimal instance.
func New(validators []plugins.Validator, postProcessors []plugins.PostProcessor) *Pipeline {
	return &Pipeline{validators: validators, postProcessors: postProcessors}
}

// AddHook appends a Late-stage custom hook, run after every registered
// post-processor.
func (p *Pipeline) AddHook(hook Hook) {
	p.hooks = append(p.hooks, hook)
}

// Run executes the full pipeline over result in place. A fatal
// (validator) error returns immediately with result left exactly as it
// was before the failing validator ran, which holds because validators
// never mutate.
func (p *Pipeline) Run(ctx context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) error {
	if err := p.runValidators(ctx, result, cfg); err != nil {
		return err
	}

	if cfg.EnableQualityScoring {
		runQualityProcessing(result)
	}

	if cfg.Chunking != nil {
		if err := runChunking(result, cfg.Chunking); err != nil {
			return err
		}
	}

	p.runPostProcessors(ctx, result, cfg)
	p.runHooks(ctx, result, cfg)

	return nil
}

// runValidators sorts validators by priority descending and runs each
// whose ShouldValidate gates true; the first failure short-circuits with
// its error returned unchanged.
func (p *Pipeline) runValidators(ctx context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) error {
	sorted := make([]plugins.Validator, len(p.validators))
	copy(sorted, p.validators)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() > sorted[j].Priority() })

	for _, v := range sorted {
		if !v.ShouldValidate(result, cfg) {
			continue
		}
		if err := v.Validate(ctx, result, cfg); err != nil {
			return err
		}
	}
	return nil
}

// runPostProcessors groups registered post-processors by stage (Early,
// then Middle, then Late), running each stage's members in registration
// order. A post-processor error is caught and appended to
// metadata.error; it never aborts the pipeline, so a failing
// post-processor cannot prevent later ones from running.
func (p *Pipeline) runPostProcessors(ctx context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) {
	for _, stage := range []plugins.ProcessingStage{plugins.StageEarly, plugins.StageMiddle, plugins.StageLate} {
		for _, pp := range p.postProcessors {
			if pp.Stage() != stage {
				continue
			}
			if !pp.ShouldProcess(result, cfg) {
				continue
			}
			if err := pp.Process(ctx, result, cfg); err != nil {
				result.Metadata.AppendError(pp.Name() + ": " + err.Error())
			}
		}
	}
}

// runHooks executes every Late-stage custom hook after the registered
// post-processors, with the same non-fatal error
// handling.
func (p *Pipeline) runHooks(ctx context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) {
	for i, hook := range p.hooks {
		if err := hook(ctx, result, cfg); err != nil {
			result.Metadata.AppendError("hook[" + strconv.Itoa(i) + "]: " + err.Error())
		}
	}
}

// runQualityProcessing normalizes whitespace, fixes mojibake, then
// computes and records the weighted quality score.
func runQualityProcessing(result *types.ExtractionResult) {
	result.Content = FixMojibake(result.Content)
	result.Content = NormalizeSpaces(result.Content)

	hasMetadata := result.Metadata.PDF != nil || result.Metadata.Pptx != nil ||
		result.Metadata.Excel != nil || result.Metadata.Email != nil || result.Metadata.Image != nil

	score := QualityScore(result.Content, hasMetadata)
	if result.Metadata.Additional == nil {
		result.Metadata.Additional = make(map[string]any)
	}
	result.Metadata.Additional["quality_score"] = score
}

// runChunking splits result.Content into
// result.Chunks per the configured chunker type and bounds. A chunking
// configuration error (e.g. overlap >= max_chars) is fatal, since it
// reflects caller misconfiguration rather than document content.
func runChunking(result *types.ExtractionResult, cfg *config.ChunkingConfig) error {
	chunks, err := chunking.FromConfig(result.Content, cfg)
	if err != nil {
		return err
	}
	result.Chunks = chunks
	return nil
}
