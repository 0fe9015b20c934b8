package extractors

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// PandocExtractor runs a Pandoc subprocess twice concurrently via
// golang.org/x/sync/errgroup, once to render content as Markdown and
// once to dump metadata as JSON, and joins the two.
type PandocExtractor struct {
	base
	pandocPath string
	available  bool
	timeout    time.Duration
}

func NewPandocExtractor() *PandocExtractor {
	path, available := detectPandoc()
	return &PandocExtractor{
		base: base{
			name:     "pandoc",
			version:  "1.0.0",
			priority: 40,
			mimes: []string{
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				"application/rtf",
				"application/vnd.oasis.opendocument.text",
				"text/x-rst",
			},
		},
		pandocPath: path,
		available:  available,
		timeout:    300 * time.Second,
	}
}

func detectPandoc() (string, bool) {
	candidates := []string{"pandoc", "/usr/bin/pandoc", "/opt/homebrew/bin/pandoc", "/usr/local/bin/pandoc"}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, true
		}
	}
	return "", false
}

func (e *PandocExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

func (e *PandocExtractor) ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	if !e.available {
		return nil, kerr.NewMissingDependencyError("pandoc")
	}

	tmp, err := os.CreateTemp("", "kreuzberg-pandoc-input-*"+pandocExtensionFor(mimeType))
	if err != nil {
		return nil, kerr.NewIOError("create pandoc temp input", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, kerr.NewIOError("write pandoc temp input", err)
	}
	tmp.Close()

	timeout := e.timeout
	if cfg != nil && cfg.SubprocessTimeoutSecs > 0 {
		timeout = time.Duration(cfg.SubprocessTimeoutSecs) * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var markdown string
	var meta map[string]any

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		out, err := e.run(groupCtx, tmp.Name(), "markdown")
		if err != nil {
			return err
		}
		markdown = out
		return nil
	})
	group.Go(func() error {
		out, err := e.run(groupCtx, tmp.Name(), "json")
		if err != nil {
			return err
		}
		meta = parsePandocMetadata(out)
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &types.ExtractionResult{
		Content:  strings.TrimSpace(markdown),
		MimeType: mimeType,
		Metadata: types.Metadata{Additional: meta},
	}, nil
}

func (e *PandocExtractor) run(ctx context.Context, inputPath, to string) (string, error) {
	cmd := exec.CommandContext(ctx, e.pandocPath, inputPath, "--to", to, "--standalone")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", classifyConversionFailure(stdout.String(), stderr.String(), err)
	}
	return stdout.String(), nil
}

// parsePandocMetadata pulls the "meta" block out of Pandoc's native JSON
// AST (the --to json output wraps document metadata and content together;
// only the metadata half is of interest here) and flattens each entry's
// MetaInlines/MetaString payload down to a plain string.
func parsePandocMetadata(raw string) map[string]any {
	var doc struct {
		Meta map[string]struct {
			T string `json:"t"`
			C any    `json:"c"`
		} `json:"meta"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(doc.Meta))
	for key, val := range doc.Meta {
		out[key] = flattenPandocMetaValue(val.C)
	}
	return out
}

func flattenPandocMetaValue(c any) string {
	switch v := c.(type) {
	case string:
		return v
	case []any:
		var parts []string
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if s, ok := m["c"].(string); ok {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

func pandocExtensionFor(mimeType string) string {
	switch mimeType {
	case "application/rtf":
		return ".rtf"
	case "application/vnd.oasis.opendocument.text":
		return ".odt"
	case "text/x-rst":
		return ".rst"
	default:
		return ".docx"
	}
}
