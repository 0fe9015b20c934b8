package kreuzberg_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/types"
	"github.com/Goldziher/kreuzberg-go/pkg/kreuzberg"
)

func newTestEngine(t *testing.T) *kreuzberg.Engine {
	t.Helper()
	opts := kreuzberg.DefaultOptions()
	opts.CacheDir = t.TempDir()
	engine, err := kreuzberg.New(opts)
	require.NoError(t, err)
	return engine
}

func TestExtractBytesPlainText(t *testing.T) {
	engine := newTestEngine(t)
	cfg := config.Default()

	result, err := engine.ExtractBytes(context.Background(), []byte("Hello, Kreuzberg!"), "text/plain", cfg)
	require.NoError(t, err)

	assert.Equal(t, "Hello, Kreuzberg!", result.Content)
	assert.Equal(t, "text/plain", result.MimeType)
	assert.Empty(t, result.Metadata.Error)
}

// MIME sniffing kicks in when ExtractFile gets no mime hint.
func TestExtractFileJSONSniff(t *testing.T) {
	engine := newTestEngine(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"k":"v"}`), 0o644))

	cfg := config.Default()
	result, err := engine.ExtractFile(context.Background(), path, "", cfg)
	require.NoError(t, err)

	assert.Equal(t, "application/json", result.MimeType)
	assert.Contains(t, result.Content, "k")
	assert.Contains(t, result.Content, "v")
}

func TestExtractBytesUnsupportedFormat(t *testing.T) {
	engine := newTestEngine(t)
	cfg := config.Default()

	_, err := engine.ExtractBytes(context.Background(), []byte("whatever"), "application/x-totally-unknown", cfg)
	require.Error(t, err)
}

// Batch results land at their submission index regardless of how fast
// each item finishes.
func TestBatchExtractBytesPreservesOrder(t *testing.T) {
	engine := newTestEngine(t)
	cfg := config.Default()
	cfg.UseCache = false

	contents := make([][]byte, 0, 6)
	mimeTypes := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		contents = append(contents, []byte("item "+string(rune('A'+i))))
		mimeTypes = append(mimeTypes, "text/plain")
	}

	items := engine.BatchExtractBytes(context.Background(), contents, mimeTypes, cfg)
	require.Len(t, items, 6)
	for i, item := range items {
		require.True(t, item.Success, item.Error)
		assert.Equal(t, i, item.Index)
		assert.Equal(t, "item "+string(rune('A'+i)), item.Result.Content)
	}
}

// Batch failures never abort the whole batch.
func TestBatchExtractBytesIsolatesFailures(t *testing.T) {
	engine := newTestEngine(t)
	cfg := config.Default()
	cfg.UseCache = false

	contents := [][]byte{[]byte("ok"), []byte("also ok")}
	mimeTypes := []string{"text/plain", "application/x-totally-unknown"}

	items := engine.BatchExtractBytes(context.Background(), contents, mimeTypes, cfg)
	require.Len(t, items, 2)
	assert.True(t, items[0].Success)
	assert.False(t, items[1].Success)
	assert.NotEmpty(t, items[1].Error)
	assert.NotNil(t, items[1].Result)
}

func TestExtractBytesCacheRoundTrip(t *testing.T) {
	engine := newTestEngine(t)
	cfg := config.Default()

	ctx := context.Background()
	first, err := engine.ExtractBytes(ctx, []byte("cache me"), "text/plain", cfg)
	require.NoError(t, err)

	second, err := engine.ExtractBytes(ctx, []byte("cache me"), "text/plain", cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.MimeType, second.MimeType)
}

// Concurrent calls for the same
// fingerprint should not explode into N separate cache writes racing each
// other, and every caller must see identical bytes back.
func TestExtractBytesConcurrentInFlightDedup(t *testing.T) {
	engine := newTestEngine(t)
	cfg := config.Default()
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	var successCount int64
	results := make([]*types.ExtractionResult, n)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			result, err := engine.ExtractBytes(ctx, []byte("shared content"), "text/plain", cfg)
			if err == nil {
				atomic.AddInt64(&successCount, 1)
				results[idx] = result
			}
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, n, successCount)
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "shared content", r.Content)
	}
}

func TestValidateMimeType(t *testing.T) {
	assert.True(t, kreuzberg.ValidateMimeType("text/plain"))
	assert.True(t, kreuzberg.ValidateMimeType("image/anything"))
	assert.False(t, kreuzberg.ValidateMimeType("application/x-definitely-not-registered"))
}

func TestSubprocessTimeoutDefaultsTo300s(t *testing.T) {
	assert.Equal(t, 300.0, kreuzberg.SubprocessTimeout(nil).Seconds())
}

func TestSubprocessTimeoutOverride(t *testing.T) {
	cfg := config.Default()
	cfg.SubprocessTimeoutSecs = 42
	assert.Equal(t, 42.0, kreuzberg.SubprocessTimeout(cfg).Seconds())
}
