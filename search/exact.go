package search

import (
	"strings"

	"github.com/kittipos/lexgraph/legal"
)

// judgeMatchThreshold is the minimum similarity ratio for a fuzzy
// judge-name match.
const judgeMatchThreshold = 0.5

// ExactEngine answers deterministic lookups over the corpus: case
// number, judge name, and case type. All hits carry similarity 1.0
// since they are exact matches, not ranked guesses.
type ExactEngine struct {
	records []legal.CaseRecord
}

// NewExactEngine returns an engine over the given records.
func NewExactEngine(records []legal.CaseRecord) *ExactEngine {
	return &ExactEngine{records: records}
}

// ByCaseNumber finds cases whose decision id equals the query, treating
// "/" and "-" as interchangeable separators.
func (e *ExactEngine) ByCaseNumber(caseNumber string, k int) []CaseResult {
	var results []CaseResult
	seen := make(map[string]bool)
	q := strings.TrimSpace(caseNumber)

	for i := range e.records {
		rec := &e.records[i]
		id := rec.DecisionID
		if q != id &&
			strings.ReplaceAll(q, "/", "-") != id &&
			strings.ReplaceAll(q, "-", "/") != id {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		results = append(results, resultFromRecord(rec, 1.0, ""))
		if len(results) >= k {
			break
		}
	}
	return results
}

// ByJudge finds cases heard by a judge whose name fuzzily matches the
// query: exact membership in the corpus-wide best-match set, normalized
// substring containment either way, or a mention in the case text.
func (e *ExactEngine) ByJudge(judgeName string, k int) []CaseResult {
	var results []CaseResult
	seen := make(map[string]bool)

	queryNorm := legal.NormalizeJudgeName(judgeName)

	var allJudges []string
	for i := range e.records {
		allJudges = append(allJudges, e.records[i].Judges...)
	}
	matched := make(map[string]bool)
	for _, j := range legal.FindBestMatches(judgeName, allJudges, judgeMatchThreshold) {
		matched[j] = true
	}

	for i := range e.records {
		rec := &e.records[i]

		found := false
		for _, judge := range rec.Judges {
			if matched[judge] {
				found = true
				break
			}
		}
		if !found {
			for _, judge := range rec.Judges {
				norm := legal.NormalizeJudgeName(judge)
				if norm != "" && (strings.Contains(norm, queryNorm) || strings.Contains(queryNorm, norm)) {
					found = true
					break
				}
			}
		}
		if !found {
			text := strings.ToLower(rec.Text())
			if strings.Contains(text, strings.ToLower(judgeName)) ||
				(queryNorm != "" && strings.Contains(text, queryNorm)) {
				found = true
			}
		}
		if !found {
			continue
		}

		if seen[rec.DecisionID] {
			continue
		}
		seen[rec.DecisionID] = true
		results = append(results, resultFromRecord(rec, 1.0, ""))
		if len(results) >= k {
			break
		}
	}
	return results
}

// ByCaseType finds cases with exactly the given type.
func (e *ExactEngine) ByCaseType(caseType string, k int) []CaseResult {
	var results []CaseResult
	seen := make(map[string]bool)

	for i := range e.records {
		rec := &e.records[i]
		if rec.CaseType != caseType {
			continue
		}
		if seen[rec.DecisionID] {
			continue
		}
		seen[rec.DecisionID] = true
		results = append(results, resultFromRecord(rec, 1.0, ""))
		if len(results) >= k {
			break
		}
	}
	return results
}
