package search

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/kittipos/lexgraph/graph"
	"github.com/kittipos/lexgraph/legal"
)

var (
	// Docket numbers embedded in a query, e.g. "123/2566".
	queryCaseNumberRe = regexp.MustCompile(`\d{2,6}/\d{2,4}`)

	// A judge mention, e.g. "ผู้พิพากษา สมชาย". The capture takes the
	// following word, marks included for combining Thai characters.
	judgeMentionRe = regexp.MustCompile(`ผู้พิพากษา\s*([\p{L}\p{M}\p{N}_]+)`)
)

const (
	// defaultMaxDepth bounds graph traversal from a candidate case.
	defaultMaxDepth = 2

	// defaultContextWeight blends graph relevance into similarity.
	defaultContextWeight = 0.3

	// maxRelatedEntities caps the neighborhood fetched per case.
	maxRelatedEntities = 20

	// maxContextMembers caps community members attached to a result.
	maxContextMembers = 10

	// maxDiscoveries caps cases added from query-entity traversal.
	maxDiscoveries = 5

	// discoveryDiscount scales discovered-case scores below genuine
	// vector hits.
	discoveryDiscount = 0.7

	// entityMatchBonus, communityBonusCap and similarCasesBonusCap are
	// the graph-relevance scoring weights.
	entityMatchBonus     = 0.5
	communityMemberBonus = 0.1
	communityBonusCap    = 0.3
	similarCaseBonus     = 0.05
	similarCasesBonusCap = 0.2
)

// Retriever enhances vector candidates with knowledge-graph context:
// each candidate gets its graph neighborhood, a graph-relevance score
// blended into its similarity, and the result set is widened with cases
// discovered by traversing from entities mentioned in the query.
type Retriever struct {
	snap          *graph.Snapshot
	vocab         *legal.Vocabulary
	maxDepth      int
	contextWeight float64
}

// NewRetriever returns a retriever over the snapshot with default
// traversal depth and context weight.
func NewRetriever(snap *graph.Snapshot, vocab *legal.Vocabulary) *Retriever {
	return &Retriever{
		snap:          snap,
		vocab:         vocab,
		maxDepth:      defaultMaxDepth,
		contextWeight: defaultContextWeight,
	}
}

// SetMaxDepth overrides the traversal depth.
func (r *Retriever) SetMaxDepth(depth int) { r.maxDepth = depth }

// SetContextWeight overrides the blend weight. Values outside [0,1]
// are clipped.
func (r *Retriever) SetContextWeight(w float64) {
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}
	r.contextWeight = w
}

// Retrieve enhances the vector candidates with graph context and
// truncates the merged ranking to k (k <= 0 means unbounded). Empty
// input yields empty output. A panic anywhere in scoring degrades to
// the original candidates, unchanged.
func (r *Retriever) Retrieve(query string, candidates []CaseResult, k int) (results []CaseResult) {
	if len(candidates) == 0 {
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("search: graph enhancement panicked, returning plain candidates", "panic", rec)
			results = candidates
		}
	}()

	var enhanced []CaseResult
	seen := make(map[string]bool)

	for _, cand := range candidates {
		if cand.DecisionID == "" || seen[cand.DecisionID] {
			continue
		}
		seen[cand.DecisionID] = true

		gc := r.caseGraphContext(cand.DecisionID)
		relevance := r.graphRelevance(query, gc)

		cand.GraphContext = gc
		cand.GraphRelevance = relevance
		cand.EnhancedSimilarity = (1-r.contextWeight)*cand.Similarity + r.contextWeight*relevance
		enhanced = append(enhanced, cand)
	}

	for _, extra := range r.discover(query, seen) {
		if !seen[extra.DecisionID] {
			seen[extra.DecisionID] = true
			enhanced = append(enhanced, extra)
		}
	}

	sort.SliceStable(enhanced, func(i, j int) bool {
		return enhanced[i].EnhancedSimilarity > enhanced[j].EnhancedSimilarity
	})
	if k > 0 && len(enhanced) > k {
		enhanced = enhanced[:k]
	}
	return enhanced
}

// caseGraphContext assembles the graph neighborhood of one case:
// related entities bucketed by type plus co-community members.
func (r *Retriever) caseGraphContext(caseID string) *GraphContext {
	gc := &GraphContext{}
	if !r.snap.Graph.HasNode(caseID) {
		return gc
	}

	for _, rel := range r.snap.Related(caseID, r.maxDepth, maxRelatedEntities) {
		ref := EntityRef{Entity: rel.Entity, Type: string(rel.Type), RelevanceScore: rel.Score}
		gc.RelatedEntities = append(gc.RelatedEntities, ref)
		switch rel.Type {
		case graph.TypeCase:
			gc.SimilarCases = append(gc.SimilarCases, ref)
		case graph.TypeJudge:
			gc.RelatedJudges = append(gc.RelatedJudges, ref)
		case graph.TypeConcept:
			gc.RelatedConcepts = append(gc.RelatedConcepts, ref)
		}
	}

	members := r.snap.CommunityContext(caseID)
	if len(members) > maxContextMembers {
		members = members[:maxContextMembers]
	}
	for _, member := range members {
		gc.CommunityMembers = append(gc.CommunityMembers, CommunityMember{
			Entity: member,
			Type:   string(r.snap.Graph.NodeType(member)),
		})
	}
	return gc
}

// graphRelevance scores how well a case's graph neighborhood matches
// the query: matched related entities contribute half their propagated
// score, community membership and similar-case counts add capped
// bonuses. The total is clamped to 1.
func (r *Retriever) graphRelevance(query string, gc *GraphContext) float64 {
	score := 0.0
	queryTerms := strings.Fields(strings.ToLower(query))

	for _, ref := range gc.RelatedEntities {
		entity := strings.ToLower(ref.Entity)
		for _, term := range queryTerms {
			if strings.Contains(entity, term) {
				score += ref.RelevanceScore * entityMatchBonus
				break
			}
		}
	}

	communityScore := float64(len(gc.CommunityMembers)) * communityMemberBonus
	score += min(communityScore, communityBonusCap)

	score += min(float64(len(gc.SimilarCases))*similarCaseBonus, similarCasesBonusCap)

	return min(score, 1.0)
}

// discover widens the result set with cases reached by traversing from
// entities mentioned in the query. Discovered cases score below vector
// hits and are capped at maxDiscoveries.
func (r *Retriever) discover(query string, existing map[string]bool) []CaseResult {
	var discovered []CaseResult

	for _, entity := range r.QueryEntities(query) {
		if !r.snap.Graph.HasNode(entity) {
			continue
		}
		for _, rel := range r.snap.Related(entity, r.maxDepth, 10) {
			if rel.Type != graph.TypeCase || existing[rel.Entity] || len(discovered) >= maxDiscoveries {
				continue
			}
			result := CaseResult{
				DecisionID:         rel.Entity,
				Title:              "Related case: " + rel.Entity,
				Text:               fmt.Sprintf("Case discovered through graph relationship with %s", entity),
				CaseType:           legal.UnknownCaseType,
				Judges:             []string{},
				Similarity:         rel.Score * discoveryDiscount,
				Keywords:           []string{},
				Litigants:          map[string]string{},
				RelatedSections:    map[string][]string{},
				EnhancedSimilarity: rel.Score * discoveryDiscount,
				GraphRelevance:     rel.Score,
				Source:             SourceGraphDiscovery,
			}
			// fill in real metadata when the corpus has the record
			if rec, ok := r.snap.Record(rel.Entity); ok {
				filled := resultFromRecord(rec, result.Similarity, SourceGraphDiscovery)
				filled.EnhancedSimilarity = result.EnhancedSimilarity
				filled.GraphRelevance = result.GraphRelevance
				result = filled
			}
			discovered = append(discovered, result)
			existing[rel.Entity] = true
		}
	}
	return discovered
}

// QueryEntities extracts graph-searchable entities from a free-text
// query: docket numbers, judge mentions, known legal concepts, and
// case-type words.
func (r *Retriever) QueryEntities(query string) []string {
	var entities []string

	entities = append(entities, queryCaseNumberRe.FindAllString(query, -1)...)

	for _, m := range judgeMentionRe.FindAllStringSubmatch(query, -1) {
		entities = append(entities, m[1])
	}

	for _, concept := range r.vocab.QueryConcepts {
		if strings.Contains(query, concept) {
			entities = append(entities, concept)
		}
	}
	for _, caseType := range r.vocab.QueryCaseTypes {
		if strings.Contains(query, caseType) {
			entities = append(entities, caseType)
		}
	}
	return entities
}

// Recommendation is one entity-based case suggestion.
type Recommendation struct {
	Entity             string  `json:"entity"`
	Type               string  `json:"type"`
	RelevanceScore     float64 `json:"relevance_score"`
	RelationshipReason string  `json:"relationship_reason"`
}

// Recommend returns cases related to a given entity, ranked by
// propagated relevance.
func (r *Retriever) Recommend(entity string) []Recommendation {
	if !r.snap.Graph.HasNode(entity) {
		return nil
	}

	var recs []Recommendation
	for _, rel := range r.snap.Related(entity, defaultMaxDepth, 15) {
		if rel.Type != graph.TypeCase {
			continue
		}
		recs = append(recs, Recommendation{
			Entity:             rel.Entity,
			Type:               string(rel.Type),
			RelevanceScore:     rel.Score,
			RelationshipReason: fmt.Sprintf("Related to %s through %s relationship", entity, rel.Type),
		})
	}
	return recs
}

// Connection describes how a query entity links to a retrieved case.
type Connection struct {
	Entity       string   `json:"entity"`
	Connection   string   `json:"connection"` // "direct" or "indirect"
	Relationship string   `json:"relationship,omitempty"`
	PathLength   int      `json:"path_length,omitempty"`
	Path         []string `json:"path,omitempty"`
}

// CommunityInfo summarizes the community a case belongs to.
type CommunityInfo struct {
	CommunityID   int      `json:"community_id"`
	CommunitySize int      `json:"community_size"`
	RelatedCases  []string `json:"related_cases"`
}

// Explanation reports why a case was retrieved for a query.
type Explanation struct {
	CaseID           string         `json:"case_id"`
	Query            string         `json:"query"`
	RetrievalReasons []string       `json:"retrieval_reasons"`
	GraphConnections []Connection   `json:"graph_connections"`
	CommunityInfo    *CommunityInfo `json:"community_info,omitempty"`
}

// Explain traces the graph connections between the query's entities and
// a retrieved case, plus the case's community placement.
func (r *Retriever) Explain(caseID, query string) Explanation {
	exp := Explanation{CaseID: caseID, Query: query}

	g := r.snap.Graph
	if !g.HasNode(caseID) {
		exp.RetrievalReasons = append(exp.RetrievalReasons, "Case not found in knowledge graph")
		return exp
	}

	for _, entity := range r.QueryEntities(query) {
		if !g.HasNode(entity) {
			continue
		}
		if e, ok := g.EdgeBetween(entity, caseID); ok {
			exp.GraphConnections = append(exp.GraphConnections, Connection{
				Entity:       entity,
				Connection:   "direct",
				Relationship: string(e.Relation),
			})
			continue
		}
		// only short indirect paths are worth reporting
		if path := g.ShortestPath(entity, caseID); len(path) > 0 && len(path) <= 3 {
			exp.GraphConnections = append(exp.GraphConnections, Connection{
				Entity:     entity,
				Connection: "indirect",
				PathLength: len(path) - 1,
				Path:       path,
			})
		}
	}

	if cid, ok := r.snap.CommunityOf(caseID); ok {
		members := r.snap.Communities[cid]
		info := &CommunityInfo{CommunityID: cid, CommunitySize: len(members)}
		for _, m := range members {
			if m != caseID && g.NodeType(m) == graph.TypeCase {
				info.RelatedCases = append(info.RelatedCases, m)
				if len(info.RelatedCases) >= 5 {
					break
				}
			}
		}
		exp.CommunityInfo = info
	}
	return exp
}
