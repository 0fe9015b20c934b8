package tokenreduction

import (
	"regexp"
	"strings"

	"github.com/Goldziher/kreuzberg-go/internal/config"
)

// codeFenceRE and headingRE gate the preserve_code/preserve_markdown
// guards: a line matching either is emitted unmodified rather than run
// through token filtering.
var codeFenceRE = regexp.MustCompile("^```")
var headingRE = regexp.MustCompile(`^#{1,6}\s`)

// Reducer applies one TokenReductionConfig to arbitrary text.
type Reducer struct {
	level            Level
	preserveMarkdown bool
	preserveCode     bool
	stopwords        map[string]bool
	preservePatterns []*regexp.Regexp
}

// NewReducer compiles cfg into a Reducer. Custom stopwords merge into
// the built-in seed list by default, and preserve patterns that fail to
// compile as regexes are skipped rather than aborting construction.
func NewReducer(cfg *config.TokenReductionConfig) *Reducer {
	stopwords := make(map[string]bool, len(defaultStopwords))
	for w := range defaultStopwords {
		stopwords[w] = true
	}
	for _, w := range cfg.CustomStopwords {
		stopwords[strings.ToLower(w)] = true
	}

	var patterns []*regexp.Regexp
	for _, p := range cfg.PreservePatterns {
		if re, err := regexp.Compile(p); err == nil {
			patterns = append(patterns, re)
		}
	}

	return &Reducer{
		level:            ParseLevel(cfg.Level),
		preserveMarkdown: cfg.PreserveMarkdown,
		preserveCode:     cfg.PreserveCode,
		stopwords:        stopwords,
		preservePatterns: patterns,
	}
}

// Reduce applies the configured reduction level to text. Off returns text
// unchanged except for the SIMD-equivalent whitespace/punctuation cleanup
// pass, which always runs.
//
// enable_semantic_clustering is accepted by TokenReductionConfig but has
// no effect here: clustering needs embeddings this engine doesn't
// compute, so the flag is a documented no-op.
func (r *Reducer) Reduce(text string) string {
	if text == "" {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inFence := false

	for _, line := range lines {
		if r.preserveCode && codeFenceRE.MatchString(strings.TrimSpace(line)) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if r.preserveMarkdown && headingRE.MatchString(line) {
			out = append(out, line)
			continue
		}
		if r.matchesPreservePattern(line) {
			out = append(out, line)
			continue
		}

		out = append(out, r.reduceLine(line))
	}

	return cleanupWhitespace(strings.Join(out, "\n"))
}

func (r *Reducer) matchesPreservePattern(line string) bool {
	for _, re := range r.preservePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (r *Reducer) reduceLine(line string) string {
	if r.level == LevelOff {
		return line
	}

	tokens := tokenizeMixedText(line)
	kept := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if r.level >= LevelLight && r.stopwords[lower] {
			continue
		}
		if r.level >= LevelAggressive && !hasCJK(tok) && len([]rune(tok)) <= 1 && !isAlnum(tok) {
			continue
		}
		if r.level == LevelMaximum && !hasCJK(tok) && len([]rune(tok)) <= 2 && r.stopwords[lower] {
			continue
		}
		kept = append(kept, tok)
	}

	return strings.Join(kept, " ")
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}

// Go's regexp package (RE2) does not support backreferences, so this
// matches any run of 3+ punctuation chars and the replacement func below
// verifies they're all the same character before collapsing.
var repeatedPunctuationRE = regexp.MustCompile(`[!?.,;:]{3,}`)
var repeatedSpaceRE = regexp.MustCompile(`[ \t]{2,}`)

// cleanupWhitespace normalizes runs of whitespace to a single space (per
// line) and collapses repeated punctuation.
func cleanupWhitespace(text string) string {
	text = repeatedPunctuationRE.ReplaceAllStringFunc(text, func(match string) string {
		for i := 1; i < len(match); i++ {
			if match[i] != match[0] {
				return match
			}
		}
		return match[:1]
	})
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = repeatedSpaceRE.ReplaceAllString(line, " ")
	}
	return strings.Join(lines, "\n")
}

// Stats reports the character- and token-level reduction achieved.
type Stats struct {
	CharReduction  float64
	TokenReduction float64
	OriginalChars  int
	ReducedChars   int
	OriginalTokens int
	ReducedTokens  int
}

// GetReductionStatistics compares original and reduced text.
func GetReductionStatistics(original, reduced string) Stats {
	originalChars := len([]rune(original))
	reducedChars := len([]rune(reduced))
	originalTokens := len(splitWhitespace(original))
	reducedTokens := len(splitWhitespace(reduced))

	stats := Stats{
		OriginalChars:  originalChars,
		ReducedChars:   reducedChars,
		OriginalTokens: originalTokens,
		ReducedTokens:  reducedTokens,
	}
	if originalChars > 0 {
		stats.CharReduction = 1.0 - float64(reducedChars)/float64(originalChars)
	}
	if originalTokens > 0 {
		stats.TokenReduction = 1.0 - float64(reducedTokens)/float64(originalTokens)
	}
	return stats
}
