package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
	"github.com/Goldziher/kreuzberg-go/internal/types"
	"github.com/Goldziher/kreuzberg-go/internal/validators"
)

type failingValidator struct{ priority int32 }

func (f failingValidator) Validate(context.Context, *types.ExtractionResult, *config.ExtractionConfig) error {
	return assert.AnError
}
func (f failingValidator) ShouldValidate(*types.ExtractionResult, *config.ExtractionConfig) bool { return true }
func (f failingValidator) Priority() int32                                                       { return f.priority }

type recordingPostProcessor struct {
	name  string
	stage plugins.ProcessingStage
	fail  bool
	calls *[]string
}

func (r recordingPostProcessor) Name() string      { return r.name }
func (r recordingPostProcessor) Version() string   { return "1.0.0" }
func (r recordingPostProcessor) Initialize() error { return nil }
func (r recordingPostProcessor) Shutdown() error   { return nil }
func (r recordingPostProcessor) Stage() plugins.ProcessingStage { return r.stage }
func (r recordingPostProcessor) ShouldProcess(*types.ExtractionResult, *config.ExtractionConfig) bool {
	return true
}
func (r recordingPostProcessor) EstimatedDurationMS(*types.ExtractionResult) int64 { return 0 }
func (r recordingPostProcessor) Process(_ context.Context, result *types.ExtractionResult, _ *config.ExtractionConfig) error {
	*r.calls = append(*r.calls, r.name)
	if r.fail {
		return assert.AnError
	}
	return nil
}

func TestPipelineValidatorFailureShortCircuits(t *testing.T) {
	var calls []string
	pp := recordingPostProcessor{name: "late", stage: plugins.StageLate, calls: &calls}

	p := New([]plugins.Validator{failingValidator{priority: 100}}, []plugins.PostProcessor{pp})
	result := &types.ExtractionResult{Content: "hello", MimeType: "text/plain"}
	cfg := config.Default()

	err := p.Run(context.Background(), result, cfg)
	require.Error(t, err)
	assert.Empty(t, calls, "post-processors must not run after a validator failure")
	assert.Equal(t, "hello", result.Content)
}

func TestPipelinePostProcessorIsolation(t *testing.T) {
	var calls []string
	failing := recordingPostProcessor{name: "failing", stage: plugins.StageEarly, fail: true, calls: &calls}
	ok := recordingPostProcessor{name: "ok", stage: plugins.StageMiddle, calls: &calls}

	p := New(validators.Defaults(), []plugins.PostProcessor{failing, ok})
	result := &types.ExtractionResult{Content: "hello world", MimeType: "text/plain"}
	cfg := config.Default()

	err := p.Run(context.Background(), result, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"failing", "ok"}, calls)
	assert.Contains(t, result.Metadata.Error, "failing")
}

func TestPipelineStageOrdering(t *testing.T) {
	var calls []string
	late := recordingPostProcessor{name: "late", stage: plugins.StageLate, calls: &calls}
	early := recordingPostProcessor{name: "early", stage: plugins.StageEarly, calls: &calls}
	middle := recordingPostProcessor{name: "middle", stage: plugins.StageMiddle, calls: &calls}

	p := New(nil, []plugins.PostProcessor{late, early, middle})
	result := &types.ExtractionResult{Content: "x", MimeType: "text/plain"}
	cfg := config.Default()

	require.NoError(t, p.Run(context.Background(), result, cfg))
	assert.Equal(t, []string{"early", "middle", "late"}, calls)
}

func TestPipelineChunkingPopulatesChunks(t *testing.T) {
	p := New(nil, nil)
	result := &types.ExtractionResult{Content: "0123456789ABCDEF", MimeType: "text/plain"}
	cfg := config.Default()
	cfg.Chunking = &config.ChunkingConfig{MaxChars: 8, MaxOverlap: 2, Trim: true}

	require.NoError(t, p.Run(context.Background(), result, cfg))
	assert.NotEmpty(t, result.Chunks)
	for _, c := range result.Chunks {
		assert.LessOrEqual(t, len([]rune(c)), 8)
	}
}

func TestPipelineHookErrorRecordedNotFatal(t *testing.T) {
	p := New(nil, nil)
	p.AddHook(func(context.Context, *types.ExtractionResult, *config.ExtractionConfig) error {
		return assert.AnError
	})
	result := &types.ExtractionResult{Content: "x", MimeType: "text/plain"}

	err := p.Run(context.Background(), result, config.Default())
	require.NoError(t, err)
	assert.Contains(t, result.Metadata.Error, "hook[0]")
}
