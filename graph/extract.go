package graph

import (
	"sort"
	"strings"

	"github.com/kittipos/lexgraph/legal"
)

// Extraction holds the entities found in a single case record, deduped
// and in first-occurrence order.
type Extraction struct {
	Cases       []string
	Judges      []string
	CaseTypes   []string
	LawSections []string
	Concepts    []string
}

// TypedEntities pairs an entity type with its extracted members.
type TypedEntities struct {
	Type     EntityType
	Entities []string
}

// ByType returns the extraction grouped for iteration, in a fixed order.
func (x *Extraction) ByType() []TypedEntities {
	return []TypedEntities{
		{TypeCase, x.Cases},
		{TypeJudge, x.Judges},
		{TypeCaseType, x.CaseTypes},
		{TypeLawSection, x.LawSections},
		{TypeConcept, x.Concepts},
	}
}

// Empty reports whether nothing was extracted.
func (x *Extraction) Empty() bool {
	return len(x.Cases) == 0 && len(x.Judges) == 0 && len(x.CaseTypes) == 0 &&
		len(x.LawSections) == 0 && len(x.Concepts) == 0
}

// Extractor derives typed entities from case records. It is pure and
// deterministic: the same record always yields the same extraction.
type Extractor struct {
	vocab *legal.Vocabulary
}

// NewExtractor returns an extractor over the given vocabulary.
func NewExtractor(vocab *legal.Vocabulary) *Extractor {
	return &Extractor{vocab: vocab}
}

// Extract pulls entities out of one record. A record without a decision
// id yields an empty extraction; extraction itself never fails.
func (ex *Extractor) Extract(rec *legal.CaseRecord) Extraction {
	var x Extraction

	if rec.DecisionID == "" {
		return x
	}
	x.Cases = append(x.Cases, rec.DecisionID)

	seen := make(map[string]bool)
	for _, judge := range rec.Judges {
		judge = strings.TrimSpace(judge)
		if judge != "" && !seen[judge] {
			seen[judge] = true
			x.Judges = append(x.Judges, judge)
		}
	}

	if rec.CaseType != "" && rec.CaseType != legal.UnknownCaseType {
		x.CaseTypes = append(x.CaseTypes, rec.CaseType)
	}

	clear(seen)
	statutes := make([]string, 0, len(rec.RelatedSections))
	for statute := range rec.RelatedSections {
		statutes = append(statutes, statute)
	}
	sort.Strings(statutes)
	for _, statute := range statutes {
		for _, section := range rec.RelatedSections[statute] {
			if section == "" {
				continue
			}
			name := statute + " " + section
			if !seen[name] {
				seen[name] = true
				x.LawSections = append(x.LawSections, name)
			}
		}
	}

	if text := rec.Text(); text != "" {
		lower := strings.ToLower(text)
		for _, term := range ex.vocab.Concepts {
			if strings.Contains(lower, term) {
				x.Concepts = append(x.Concepts, term)
			}
		}
	}

	return x
}
