// Package postprocessors implements the built-in PostProcessor plugins:
// language detection, keyword extraction, and the token-reduction
// wrapper around internal/tokenreduction.
//
// Language detection works without a model or external service: Unicode
// script-range classification for non-Latin scripts, falling back to a
// stopword-overlap vote across a small set of Latin-script languages.
package postprocessors

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// scriptRanges maps a dominant non-Latin Unicode script to its most
// likely ISO-639-3 code. This is a coarse classifier: it picks the most
// common language for a script rather than discriminating within it
// (e.g. all CJK Han text is reported as "zho").
var scriptRanges = []struct {
	name string
	lang string
	in   func(rune) bool
}{
	{"Han", "zho", func(r rune) bool { return unicode.Is(unicode.Han, r) }},
	{"Hiragana", "jpn", func(r rune) bool { return unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) }},
	{"Hangul", "kor", func(r rune) bool { return unicode.Is(unicode.Hangul, r) }},
	{"Cyrillic", "rus", func(r rune) bool { return unicode.Is(unicode.Cyrillic, r) }},
	{"Arabic", "ara", func(r rune) bool { return unicode.Is(unicode.Arabic, r) }},
	{"Devanagari", "hin", func(r rune) bool { return unicode.Is(unicode.Devanagari, r) }},
	{"Greek", "ell", func(r rune) bool { return unicode.Is(unicode.Greek, r) }},
	{"Hebrew", "heb", func(r rune) bool { return unicode.Is(unicode.Hebrew, r) }},
}

// latinStopwords is a small per-language stopword seed used to vote among
// Latin-script languages when no other script dominates. Counts are not
// meant to be exhaustive, only discriminating between common European
// languages likely to show up in extracted documents.
var latinStopwords = map[string][]string{
	"eng": {"the", "and", "of", "to", "in", "is", "that", "for", "it", "with", "as", "was", "on"},
	"fra": {"le", "la", "les", "de", "et", "des", "un", "une", "est", "pour", "dans", "que", "qui"},
	"deu": {"der", "die", "das", "und", "ist", "nicht", "mit", "den", "von", "ein", "eine", "zu"},
	"spa": {"el", "la", "los", "las", "de", "y", "que", "en", "un", "una", "es", "por", "para"},
	"por": {"o", "a", "os", "as", "de", "e", "que", "em", "um", "uma", "é", "para", "com"},
	"ita": {"il", "la", "di", "e", "che", "un", "una", "in", "per", "con", "non", "sono"},
	"nld": {"de", "het", "een", "en", "van", "is", "dat", "niet", "op", "voor", "met"},
}

// LanguageDetector is the post-processor that populates
// result.DetectedLanguages.
type LanguageDetector struct{}

func NewLanguageDetector() *LanguageDetector { return &LanguageDetector{} }

func (d *LanguageDetector) Name() string      { return "language_detector" }
func (d *LanguageDetector) Version() string   { return "1.0.0" }
func (d *LanguageDetector) Initialize() error { return nil }
func (d *LanguageDetector) Shutdown() error   { return nil }

func (d *LanguageDetector) Stage() plugins.ProcessingStage { return plugins.StageMiddle }

func (d *LanguageDetector) ShouldProcess(result *types.ExtractionResult, cfg *config.ExtractionConfig) bool {
	return cfg.LanguageDetection != nil && strings.TrimSpace(result.Content) != ""
}

func (d *LanguageDetector) EstimatedDurationMS(result *types.ExtractionResult) int64 {
	return int64(len(result.Content)) / 5000
}

func (d *LanguageDetector) Process(_ context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) error {
	langs := DetectLanguages(result.Content, cfg.LanguageDetection.TopK)
	result.DetectedLanguages = langs
	return nil
}

// DetectLanguages returns up to topK ISO-639-3 codes, most-likely first.
// Script classification wins outright when letters from the non-Latin
// scripts in scriptRanges together make up more than half of all letters;
// otherwise a stopword-overlap vote picks
// among the Latin-script candidates in latinStopwords.
func DetectLanguages(text string, topK int) []string {
	if topK <= 0 {
		topK = 1
	}

	scriptCounts := make(map[string]int, len(scriptRanges))
	var letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, sr := range scriptRanges {
			if sr.in(r) {
				scriptCounts[sr.lang]++
				break
			}
		}
	}

	if letters == 0 {
		return nil
	}

	type scored struct {
		lang  string
		score int
	}
	var ranked []scored
	for lang, count := range scriptCounts {
		ranked = append(ranked, scored{lang, count})
	}

	nonLatin := 0
	for _, r := range ranked {
		nonLatin += r.score
	}

	if nonLatin > letters/2 {
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		out := make([]string, 0, topK)
		for i := 0; i < len(ranked) && i < topK; i++ {
			out = append(out, ranked[i].lang)
		}
		return out
	}

	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) })
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	var votes []scored
	for lang, stopwords := range latinStopwords {
		hits := 0
		for _, sw := range stopwords {
			if wordSet[sw] {
				hits++
			}
		}
		votes = append(votes, scored{lang, hits})
	}
	sort.Slice(votes, func(i, j int) bool {
		if votes[i].score != votes[j].score {
			return votes[i].score > votes[j].score
		}
		return votes[i].lang < votes[j].lang
	})

	out := make([]string, 0, topK)
	for i := 0; i < len(votes) && i < topK; i++ {
		if votes[i].score == 0 && i > 0 {
			break
		}
		out = append(out, votes[i].lang)
	}
	if len(out) == 0 {
		out = append(out, "eng")
	}
	return out
}

var _ plugins.PostProcessor = (*LanguageDetector)(nil)
