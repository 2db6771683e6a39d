package legal

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Keeps Thai characters, letters, digits, underscore, whitespace and
	// basic punctuation. Everything else is stripped.
	cleanRe = regexp.MustCompile(`[^\x{0E00}-\x{0E7F}\p{L}\p{N}_\s.,!?()-]`)

	// Statute references such as "มาตรา 334" or "มา. 80(1)".
	sectionRefRe = regexp.MustCompile(`(?i)(?:มาตรา|มา\.)\s*\d+(?:\(\d+\))?`)

	// Docket numbers such as "123/2566".
	caseNumberRe = regexp.MustCompile(`\d+/\d+`)

	// Digits and list punctuation inside a judge name carry no identity.
	judgeNoiseRe = regexp.MustCompile(`[\d.,()\-:]`)
)

// Honorific and title prefixes stripped from judge names. Longer forms
// come first so "ผู้พิพากษาหัวหน้า" is not left half-stripped by the
// plain "ผู้พิพากษา" entry.
var judgePrefixes = []string{
	"ผู้พิพากษาหัวหน้า", "ผู้พิพากษาที่ปรึกษา", "ผู้พิพากษาศาลฎีกา",
	"ประธานศาลฎีกา", "รองประธานศาลฎีกา", "ผู้พิพากษา",
	"รองศาสตราจารย์", "ศาสตราจารย์", "ดร.",
	"นางสาว", "นาง", "นาย",
}

// NormalizeUnicode applies NFC normalization and collapses runs of
// whitespace to single spaces.
func NormalizeUnicode(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
}

// CleanText collapses whitespace and strips characters outside the Thai
// block, letters, digits and basic punctuation.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = cleanRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// NormalizeJudgeName canonicalizes a judge name for comparison: NFC,
// lowercase, honorific prefixes removed, digits and punctuation dropped,
// whitespace collapsed.
func NormalizeJudgeName(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ToLower(NormalizeUnicode(name))
	for _, prefix := range judgePrefixes {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			name = strings.TrimLeft(rest, " ")
		}
	}
	name = judgeNoiseRe.ReplaceAllString(name, "")
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
}

// SimilarityRatio is the classic matching-blocks string similarity:
// 2*M/T where M is the total length of the longest matching blocks found
// recursively and T is the combined length of both strings. Symmetric,
// in [0,1], computed over runes.
func SimilarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(totalMatching(ra, rb)) / float64(total)
}

func totalMatching(a, b []rune) int {
	i, j, k := longestMatch(a, b)
	if k == 0 {
		return 0
	}
	return k + totalMatching(a[:i], b[:j]) + totalMatching(a[i+k:], b[j+k:])
}

// longestMatch finds the longest common contiguous block, preferring the
// earliest occurrence in a, then in b.
func longestMatch(a, b []rune) (besti, bestj, bestk int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	runLen := make(map[int]int)
	for i, r := range a {
		next := make(map[int]int)
		for _, j := range b2j[r] {
			k := runLen[j-1] + 1
			next[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		runLen = next
	}
	return besti, bestj, bestk
}

// FindBestMatches returns the candidates whose normalized form contains
// (or is contained by) the normalized query, or whose similarity ratio
// meets the threshold.
func FindBestMatches(query string, candidates []string, threshold float64) []string {
	var matches []string
	qn := NormalizeJudgeName(query)
	for _, candidate := range candidates {
		cn := NormalizeJudgeName(candidate)
		if strings.Contains(cn, qn) || strings.Contains(qn, cn) {
			matches = append(matches, candidate)
			continue
		}
		if SimilarityRatio(qn, cn) >= threshold {
			matches = append(matches, candidate)
		}
	}
	return matches
}

// ExtractKeywords pulls statute references, docket numbers, and known
// legal-concept terms out of free text, in that order.
func (v *Vocabulary) ExtractKeywords(text string) []string {
	var keywords []string
	keywords = append(keywords, sectionRefRe.FindAllString(text, -1)...)
	keywords = append(keywords, caseNumberRe.FindAllString(text, -1)...)
	for _, term := range v.QueryConcepts {
		if strings.Contains(text, term) {
			keywords = append(keywords, term)
		}
	}
	return keywords
}

// TruncateText cuts text to at most max runes, backing up to the last
// space or period when one falls in the final fifth, and appends an
// ellipsis.
func TruncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	truncated := runes[:max]
	cut := -1
	for i := len(truncated) - 1; i >= 0; i-- {
		if truncated[i] == ' ' || truncated[i] == '.' {
			cut = i
			break
		}
	}
	if cut >= 0 && float64(cut) > float64(max)*0.8 {
		truncated = truncated[:cut]
	}
	return string(truncated) + "..."
}

func containsFold(text, term string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(term))
}
