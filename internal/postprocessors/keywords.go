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

// keywordStopwords is the default stopword seed for RAKE candidate
// delimiting; KeywordConfig.StopwordsExtra merges on top.
var keywordStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "for": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"it": true, "this": true, "that": true, "with": true, "as": true, "by": true,
	"from": true, "not": true, "have": true, "has": true, "had": true, "you": true,
	"your": true, "will": true, "can": true, "also": true, "which": true,
}

// maxWordsPerPhrase bounds RAKE candidate phrases; longer runs of
// stopword-free text tend to be sentences, not keywords.
const maxWordsPerPhrase = 3

// KeywordExtractor is a Late-stage RAKE keyword extractor: stopwords and
// punctuation delimit candidate phrases, each word is scored by
// co-occurrence degree over frequency, and a phrase scores the sum of its
// word scores.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor { return &KeywordExtractor{} }

func (k *KeywordExtractor) Name() string      { return "keyword_extractor" }
func (k *KeywordExtractor) Version() string   { return "1.0.0" }
func (k *KeywordExtractor) Initialize() error { return nil }
func (k *KeywordExtractor) Shutdown() error   { return nil }

func (k *KeywordExtractor) Stage() plugins.ProcessingStage { return plugins.StageLate }

func (k *KeywordExtractor) ShouldProcess(result *types.ExtractionResult, cfg *config.ExtractionConfig) bool {
	return cfg.Keywords != nil && strings.TrimSpace(result.Content) != ""
}

func (k *KeywordExtractor) EstimatedDurationMS(result *types.ExtractionResult) int64 {
	return int64(len(result.Content)) / 10000
}

func (k *KeywordExtractor) Process(_ context.Context, result *types.ExtractionResult, cfg *config.ExtractionConfig) error {
	keywords := ExtractKeywords(result.Content, *cfg.Keywords)
	if result.Metadata.Additional == nil {
		result.Metadata.Additional = make(map[string]any)
	}
	result.Metadata.Additional["keywords"] = keywords
	return nil
}

// ExtractKeywords runs RAKE over text: candidate phrases are maximal runs
// of non-stopword words between stopwords/punctuation, every word gets
// score degree/frequency (degree counts co-occurring words including
// itself), and a phrase scores the sum of its word scores. Phrases are
// ranked by min-max-normalized score (ties broken alphabetically for
// determinism) and the top MaxKeywords returned.
func ExtractKeywords(text string, cfg config.KeywordConfig) []string {
	stopwords := make(map[string]bool, len(keywordStopwords)+len(cfg.StopwordsExtra))
	for w := range keywordStopwords {
		stopwords[w] = true
	}
	for _, w := range cfg.StopwordsExtra {
		stopwords[strings.ToLower(w)] = true
	}

	phrases := candidatePhrases(text, stopwords, cfg.MinWordLength)
	if len(phrases) == 0 {
		return nil
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, phrase := range phrases {
		for _, w := range phrase {
			freq[w]++
			degree[w] += len(phrase)
		}
	}

	phraseScores := make(map[string]float64, len(phrases))
	for _, phrase := range phrases {
		key := strings.Join(phrase, " ")
		if _, seen := phraseScores[key]; seen {
			continue
		}
		score := 0.0
		for _, w := range phrase {
			score += float64(degree[w]) / float64(freq[w])
		}
		phraseScores[key] = score
	}

	minScore, maxScore := 0.0, 0.0
	first := true
	for _, s := range phraseScores {
		if first || s < minScore {
			minScore = s
		}
		if first || s > maxScore {
			maxScore = s
		}
		first = false
	}

	type scored struct {
		phrase string
		score  float64
	}
	ranked := make([]scored, 0, len(phraseScores))
	for phrase, s := range phraseScores {
		normalized := 1.0
		if maxScore > minScore {
			normalized = (s - minScore) / (maxScore - minScore)
		}
		ranked = append(ranked, scored{phrase, normalized})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].phrase < ranked[j].phrase
	})

	maxKeywords := cfg.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = 10
	}
	if len(ranked) > maxKeywords {
		ranked = ranked[:maxKeywords]
	}

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.phrase
	}
	return out
}

// candidatePhrases splits text into RAKE candidates: words accumulate
// into the current phrase until a stopword or any punctuation (anything
// that is not a letter, digit, or space) ends it. Phrases longer than
// maxWordsPerPhrase or shorter than minLength characters are dropped.
func candidatePhrases(text string, stopwords map[string]bool, minLength int) [][]string {
	var phrases [][]string
	var current []string
	var word strings.Builder

	endPhrase := func() {
		if len(current) == 0 {
			return
		}
		phrase := current
		current = nil
		if len(phrase) > maxWordsPerPhrase {
			return
		}
		if len(strings.Join(phrase, " ")) < minLength {
			return
		}
		phrases = append(phrases, phrase)
	}
	endWord := func() {
		if word.Len() == 0 {
			return
		}
		w := strings.ToLower(word.String())
		word.Reset()
		if stopwords[w] {
			endPhrase()
			return
		}
		current = append(current, w)
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		case unicode.IsSpace(r):
			endWord()
		default:
			endWord()
			endPhrase()
		}
	}
	endWord()
	endPhrase()

	return phrases
}

var _ plugins.PostProcessor = (*KeywordExtractor)(nil)
