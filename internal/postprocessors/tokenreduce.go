package postprocessors

import (
	"context"
	"strings"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
	"github.com/Goldziher/kreuzberg-go/internal/tokenreduction"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// TokenReducer wraps internal/tokenreduction.Reducer as a Late-stage
// post-processor. It stores before/after statistics on
// metadata.additional so callers can observe
// how much the pass actually shrank the content.
type TokenReducer struct{}

func NewTokenReducer() *TokenReducer { return &TokenReducer{} }

func (t *TokenReducer) Name() string      { return "token_reducer" }
func (t *TokenReducer) Version() string   { return "1.0.0" }
func (t *TokenReducer) Initialize() error { return nil }
func (t *TokenReducer) Shutdown() error   { return nil }

func (t *TokenReducer) Stage() plugins.ProcessingStage { return plugins.StageLate }

func (t *TokenReducer) ShouldProcess(result *types.ExtractionResult, cfg *config.ExtractionConfig) bool {
	return cfg.TokenReduction != nil &&
		tokenreduction.ParseLevel(cfg.TokenReduction.Level) != tokenreduction.LevelOff &&
		strings.TrimSpace(result.Content) != ""
}

func (t *TokenReducer) EstimatedDurationMS(result *types.ExtractionResult) int64 {
	return int64(len(result.Content)) / 8000
}

func (t *TokenReducer) Process(_ context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) error {
	reducer := tokenreduction.NewReducer(cfg.TokenReduction)
	reduced := reducer.Reduce(result.Content)
	stats := tokenreduction.GetReductionStatistics(result.Content, reduced)

	result.Content = reduced
	if result.Metadata.Additional == nil {
		result.Metadata.Additional = make(map[string]any)
	}
	result.Metadata.Additional["token_reduction_char_ratio"] = stats.CharReduction
	result.Metadata.Additional["token_reduction_token_ratio"] = stats.TokenReduction
	return nil
}

var _ plugins.PostProcessor = (*TokenReducer)(nil)
