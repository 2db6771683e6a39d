package graph

import (
	"log/slog"

	"github.com/kittipos/lexgraph/legal"
)

// Builder assembles a Snapshot from a case corpus: entity extraction,
// relationship edges, text-similarity edges, and community detection.
type Builder struct {
	Vocab       *legal.Vocabulary
	Partitioner Partitioner

	// Resolution is passed to the partitioner.
	Resolution float64

	// MinCommunitySize drops smaller communities from the retained map.
	MinCommunitySize int

	// SimilarityThreshold is the minimum cosine similarity for a
	// similar_to edge between two cases.
	SimilarityThreshold float64

	// MaxFeatures caps the tf-idf vocabulary.
	MaxFeatures int
}

// NewBuilder returns a Builder with the default partitioner and tuning.
func NewBuilder(vocab *legal.Vocabulary) *Builder {
	return &Builder{
		Vocab:               vocab,
		Partitioner:         ModularityPartitioner{},
		Resolution:          1.0,
		MinCommunitySize:    3,
		SimilarityThreshold: 0.3,
		MaxFeatures:         1000,
	}
}

// Build constructs the knowledge graph and its communities from the
// corpus. Records without a decision id are skipped with a warning;
// a malformed record never aborts the build.
func (b *Builder) Build(records []legal.CaseRecord) *Snapshot {
	slog.Info("graph: building knowledge graph", "cases", len(records))

	g := New()
	extractor := NewExtractor(b.Vocab)
	documents := make(map[string]string)
	extractions := make(map[string]Extraction)
	var caseOrder []string

	for i := range records {
		rec := &records[i]
		if rec.DecisionID == "" {
			slog.Warn("graph: skipping record without decision id", "index", i, "title", rec.Title)
			continue
		}
		x := extractor.Extract(rec)
		if _, seen := extractions[rec.DecisionID]; !seen {
			caseOrder = append(caseOrder, rec.DecisionID)
		}
		extractions[rec.DecisionID] = x
		documents[rec.DecisionID] = rec.Text()

		for _, group := range x.ByType() {
			for _, entity := range group.Entities {
				g.AddNode(entity, group.Type)
			}
		}
	}

	for _, caseID := range caseOrder {
		b.addCaseRelationships(g, caseID, extractions[caseID])
	}
	b.addSimilarityRelationships(g, records, documents)

	slog.Info("graph: build complete", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	communities := b.detectCommunities(g)
	return NewSnapshot(g, communities, records, documents)
}

// addCaseRelationships connects one case to its entities and the
// entities to each other.
func (b *Builder) addCaseRelationships(g *Graph, caseID string, x Extraction) {
	// The case contains everything extracted from it. Cases never
	// contain other cases; those pairs only carry similar_to edges.
	for _, group := range x.ByType() {
		if group.Type == TypeCase {
			continue
		}
		for _, entity := range group.Entities {
			g.UpsertEdge(caseID, entity, RelContains, 1.0)
		}
	}

	// Judges handle the case types they appear on.
	for _, judge := range x.Judges {
		for _, caseType := range x.CaseTypes {
			g.UpsertEdge(judge, caseType, RelHandles, 1.0)
		}
	}

	// Judge-concept edges accumulate a corpus-wide co-occurrence count.
	for _, judge := range x.Judges {
		for _, concept := range x.Concepts {
			weight := 1.0
			if prior, ok := g.EdgeWeight(judge, concept, RelDealsWith); ok {
				weight = prior + 1
			}
			g.UpsertEdge(judge, concept, RelDealsWith, weight)
		}
	}
}

// addSimilarityRelationships links pairs of cases whose tf-idf cosine
// similarity clears the threshold. The pairwise scan is O(n^2) in the
// corpus size, which is acceptable at the corpus scales this serves;
// larger corpora need a blocking or ANN pre-filter first.
func (b *Builder) addSimilarityRelationships(g *Graph, records []legal.CaseRecord, documents map[string]string) {
	var caseIDs []string
	var docs []string
	for i := range records {
		id := records[i].DecisionID
		if id == "" {
			continue
		}
		if text, ok := documents[id]; ok {
			caseIDs = append(caseIDs, id)
			docs = append(docs, text)
		}
	}
	if len(docs) < 2 {
		return
	}

	slog.Info("graph: computing case similarities", "documents", len(docs))
	vectors := tfidfVectors(docs, b.MaxFeatures)

	added := 0
	for i := range caseIDs {
		for j := i + 1; j < len(caseIDs); j++ {
			if sim := dotSparse(vectors[i], vectors[j]); sim > b.SimilarityThreshold {
				g.UpsertEdge(caseIDs[i], caseIDs[j], RelSimilarTo, sim)
				added++
			}
		}
	}
	slog.Info("graph: similarity edges added", "edges", added)
}

// detectCommunities partitions the graph and keeps communities of at
// least MinCommunitySize members. Detection failure degrades to an
// empty community map.
func (b *Builder) detectCommunities(g *Graph) map[int][]string {
	partition, err := b.Partitioner.Partition(g, b.Resolution)
	if err != nil {
		slog.Warn("graph: community detection failed", "error", err)
		return map[int][]string{}
	}
	retained := RetainCommunities(g, partition, b.MinCommunitySize)
	slog.Info("graph: communities detected", "retained", len(retained))
	return retained
}
