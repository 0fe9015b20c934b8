// Package chunking splits extracted text into overlapping windows bounded
// by a character budget, with a plain-text and a Markdown-aware
// splitter.
package chunking

import (
	"strings"
	"unicode/utf8"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

// ChunkerType selects the boundary-finding strategy.
type ChunkerType int

const (
	ChunkerText ChunkerType = iota
	ChunkerMarkdown
)

// textBoundaryPatterns and markdownBoundaryPatterns are tried in order,
// most-preferred first, when looking for where to end a chunk inside the
// window [0, maxChars]. Markdown's extra patterns prefer to end a chunk at
// a code fence, heading, or table row; they are only preferences, so a
// fenced code block or table longer than the window is still cut at
// whatever boundary is found inside it.
var textBoundaryPatterns = []string{"\n\n", "\n", ". ", " "}
var markdownBoundaryPatterns = []string{"\n\n", "\n```\n", "\n# ", "\n## ", "\n### ", "\n|", "\n", ". ", " "}

// Chunk splits text into chunks of at most maxChars characters, each
// chunk overlapping the previous one by approximately overlap characters.
// Returns an error if overlap >= maxChars.
func Chunk(text string, maxChars, overlap int, trim bool, chunkerType ChunkerType) ([]string, error) {
	if overlap >= maxChars {
		return nil, kerr.NewValidationError("chunk overlap must be smaller than max_chars", nil)
	}
	if text == "" {
		return nil, nil
	}

	patterns := textBoundaryPatterns
	if chunkerType == ChunkerMarkdown {
		patterns = markdownBoundaryPatterns
	}

	runes := []rune(text)
	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + maxChars
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = bestBoundary(runes, start, end, patterns)
		}

		chunk := string(runes[start:end])
		if trim {
			chunk = strings.TrimSpace(chunk)
		}
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// bestBoundary looks backward from end (the hard character budget) for the
// first boundary pattern that occurs inside (start, end]; falling back to
// the hard cutoff if none of the patterns appear. LastIndex reports a byte
// offset into the window, which must be mapped back to a rune count before
// it can be combined with the caller's rune indices.
func bestBoundary(runes []rune, start, end int, patterns []string) int {
	window := string(runes[start:end])

	for _, pattern := range patterns {
		if idx := strings.LastIndex(window, pattern); idx > 0 {
			return start + utf8.RuneCountInString(window[:idx]) + utf8.RuneCountInString(pattern)
		}
	}

	return end
}

// FromConfig runs Chunk using the chunker type implied by cfg (Markdown
// when UseMarkdown is set).
func FromConfig(text string, cfg *config.ChunkingConfig) ([]string, error) {
	chunkerType := ChunkerText
	if cfg.UseMarkdown {
		chunkerType = ChunkerMarkdown
	}
	return Chunk(text, cfg.MaxChars, cfg.MaxOverlap, cfg.Trim, chunkerType)
}
