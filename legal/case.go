// Package legal holds the case record model and Thai legal text utilities:
// unicode normalization, judge-name normalization, fuzzy matching, and the
// vocabulary tables driving entity and case-type detection.
package legal

// CaseRecord is one court decision as loaded from the corpus.
type CaseRecord struct {
	DecisionID      string              `json:"decision_id"`
	Title           string              `json:"title"`
	Summary         string              `json:"summary"`
	FullText        string              `json:"full_text,omitempty"`
	CaseType        string              `json:"case_type"`
	Judges          []string            `json:"judges"`
	Litigants       map[string]string   `json:"litigants,omitempty"`
	RelatedSections map[string][]string `json:"related_sections,omitempty"`
	Keywords        []string            `json:"keywords,omitempty"`
	SourceFile      string              `json:"source,omitempty"`
}

// Text returns the text used for concept extraction and similarity
// computation: the summary when present, otherwise the full text.
func (c *CaseRecord) Text() string {
	if c.Summary != "" {
		return c.Summary
	}
	return c.FullText
}
