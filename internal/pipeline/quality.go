package pipeline

import (
	"regexp"
	"strings"
	"unicode"
)

// mojibakeReplacements covers the handful of UTF-8-decoded-as-Latin-1
// sequences seen most often in scraped/converted documents. This is a
// small, targeted table rather than a full charset-detection pass.
var mojibakeReplacements = []struct{ from, to string }{
	{"Ã©", "é"}, {"Ã¨", "è"}, {"Ã¢", "â"}, {"Ã´", "ô"}, {"Ã®", "î"},
	{"Ã¯", "ï"}, {"Ã¹", "ù"}, {"Ã ", "à"}, {"Ã§", "ç"},
	{"â€™", "'"}, {"â€œ", "“"}, {"â€\x9d", "”"}, {"â€“", "–"}, {"â€”", "—"},
}

// FixMojibake repairs the common UTF-8-as-Latin-1 mis-decoding artifacts.
func FixMojibake(text string) string {
	for _, r := range mojibakeReplacements {
		text = strings.ReplaceAll(text, r.from, r.to)
	}
	return text
}

var spaceRunRE = regexp.MustCompile(`[ \t]{2,}`)
var blankLineRunRE = regexp.MustCompile(`\n{3,}`)

// NormalizeSpaces collapses runs of horizontal whitespace to a single
// space and runs of 3+ newlines (2+ blank lines) down to a single blank
// line, keeping paragraph structure
// but removing the formatting noise PDF/HTML extraction tends to leave.
func NormalizeSpaces(text string) string {
	text = spaceRunRE.ReplaceAllString(text, " ")
	text = blankLineRunRE.ReplaceAllString(text, "\n\n")
	return text
}

const (
	ocrPenaltyWeight        = 0.3
	scriptPenaltyWeight     = 0.2
	navChromePenaltyWeight  = 0.1
	structuralBonusWeight   = 0.2
	metadataBonusWeight     = 0.1
)

// navChromePattern catches the short, pipe/bullet-separated navigation
// lines ("Home | About | Contact") that leak into HTML-derived text.
var navChromePattern = regexp.MustCompile(`^\s*([A-Za-z]+\s*[|•·]\s*){2,}[A-Za-z]+\s*$`)

// QualityScore derives a [0,1] confidence score for text: OCR-garbage
// penalty 0.3, mixed-script penalty 0.2, navigation-chrome penalty 0.1,
// structural bonus 0.2, metadata-present bonus 0.1.
func QualityScore(text string, hasMetadata bool) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	score := 0.5

	if looksLikeOCRGarbage(text) {
		score -= ocrPenaltyWeight
	}
	if hasSuspiciousScriptMix(text) {
		score -= scriptPenaltyWeight
	}
	if hasNavigationChrome(text) {
		score -= navChromePenaltyWeight
	}
	if hasStructure(text) {
		score += structuralBonusWeight
	}
	if hasMetadata {
		score += metadataBonusWeight
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// looksLikeOCRGarbage flags text with a low ratio of alphanumeric-to-total
// characters, the signature of a botched OCR pass.
func looksLikeOCRGarbage(text string) bool {
	var alnum, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total == 0 {
		return false
	}
	return float64(alnum)/float64(total) < 0.6
}

// hasSuspiciousScriptMix flags text mixing Latin letters with the
// replacement character or an unusually high density of symbol runes,
// which tends to indicate a mis-decoded or mis-detected script.
func hasSuspiciousScriptMix(text string) bool {
	if strings.ContainsRune(text, unicode.ReplacementChar) {
		return true
	}
	var symbol, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsSymbol(r) {
			symbol++
		}
	}
	return total > 0 && float64(symbol)/float64(total) > 0.1
}

// hasNavigationChrome flags pages dominated by short nav-menu-shaped
// lines.
func hasNavigationChrome(text string) bool {
	lines := strings.Split(text, "\n")
	var navLines int
	for _, line := range lines {
		if navChromePattern.MatchString(line) {
			navLines++
		}
	}
	return len(lines) > 0 && float64(navLines)/float64(len(lines)) > 0.2
}

// hasStructure rewards text with paragraph breaks or Markdown headings,
// a signal the extractor preserved document structure rather than
// flattening everything into one run-on block.
func hasStructure(text string) bool {
	return strings.Contains(text, "\n\n") || strings.Contains(text, "\n#")
}
