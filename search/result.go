// Package search implements the retrieval surface over a knowledge-graph
// snapshot: exact-match engines, the graph-context retriever, a vector
// search collaborator, and the strategy router that picks between them.
package search

import (
	"github.com/kittipos/lexgraph/legal"
)

// Result provenance values.
const (
	SourceVector         = "vector"
	SourceGraphDiscovery = "graph_discovery"
)

// maxDisplayLength caps the text excerpt carried on a result.
const maxDisplayLength = 150

// EntityRef is one related entity with its propagated relevance.
type EntityRef struct {
	Entity         string  `json:"entity"`
	Type           string  `json:"type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// CommunityMember is a co-community entity without a score.
type CommunityMember struct {
	Entity string `json:"entity"`
	Type   string `json:"type"`
}

// GraphContext is the graph neighborhood attached to an enhanced result.
type GraphContext struct {
	RelatedEntities  []EntityRef       `json:"related_entities"`
	CommunityMembers []CommunityMember `json:"community_members"`
	SimilarCases     []EntityRef       `json:"similar_cases"`
	RelatedJudges    []EntityRef       `json:"related_judges"`
	RelatedConcepts  []EntityRef       `json:"related_concepts"`
}

// CaseResult is one ranked search hit.
type CaseResult struct {
	DecisionID      string              `json:"decision_id"`
	Title           string              `json:"title"`
	Text            string              `json:"text"`
	CaseType        string              `json:"case_type"`
	Judges          []string            `json:"judges"`
	Similarity      float64             `json:"similarity"`
	Keywords        []string            `json:"keywords"`
	Litigants       map[string]string   `json:"litigants"`
	RelatedSections map[string][]string `json:"related_sections"`
	FullSummary     string              `json:"full_summary"`

	// Set by the graph retriever.
	GraphContext       *GraphContext `json:"graph_context,omitempty"`
	EnhancedSimilarity float64       `json:"enhanced_similarity"`
	GraphRelevance     float64       `json:"graph_relevance"`
	Source             string        `json:"source"`
}

// resultFromRecord builds a hit from a corpus record.
func resultFromRecord(rec *legal.CaseRecord, similarity float64, source string) CaseResult {
	caseType := rec.CaseType
	if caseType == "" {
		caseType = legal.UnknownCaseType
	}
	return CaseResult{
		DecisionID:      rec.DecisionID,
		Title:           rec.Title,
		Text:            legal.TruncateText(rec.Text(), maxDisplayLength),
		CaseType:        caseType,
		Judges:          rec.Judges,
		Similarity:      similarity,
		Keywords:        rec.Keywords,
		Litigants:       rec.Litigants,
		RelatedSections: rec.RelatedSections,
		FullSummary:     rec.Summary,
		Source:          source,
	}
}
