package graph

import "github.com/kittipos/lexgraph/legal"

// Snapshot is the immutable product of a build: the graph, its retained
// communities, the corpus records, and the per-case document text the
// similarity edges were computed from. A Snapshot is shared by
// concurrent readers without locking; replacing one is a whole-value
// pointer swap performed by the caller.
type Snapshot struct {
	Graph       *Graph
	Communities map[int][]string
	Documents   map[string]string

	records     []legal.CaseRecord
	recordByID  map[string]*legal.CaseRecord
	communityOf map[string]int
}

// maxCommunityContext bounds the member list returned by
// CommunityContext.
const maxCommunityContext = 20

// NewSnapshot assembles a snapshot and its lookup indexes.
func NewSnapshot(g *Graph, communities map[int][]string, records []legal.CaseRecord, documents map[string]string) *Snapshot {
	s := &Snapshot{
		Graph:       g,
		Communities: communities,
		Documents:   documents,
		records:     records,
		recordByID:  make(map[string]*legal.CaseRecord, len(records)),
		communityOf: make(map[string]int),
	}
	for i := range records {
		id := records[i].DecisionID
		if id == "" {
			continue
		}
		if _, ok := s.recordByID[id]; !ok {
			s.recordByID[id] = &records[i]
		}
	}
	for cid, members := range communities {
		for _, entity := range members {
			s.communityOf[entity] = cid
		}
	}
	return s
}

// Related propagates relevance outward from an entity. See
// Graph.Related for the scoring policy.
func (s *Snapshot) Related(entity string, maxDepth, maxResults int) []RelatedEntity {
	return s.Graph.Related(entity, maxDepth, maxResults)
}

// CommunityOf returns the retained community holding the entity.
func (s *Snapshot) CommunityOf(entity string) (int, bool) {
	cid, ok := s.communityOf[entity]
	return cid, ok
}

// CommunityContext returns the other members of the entity's community,
// capped at maxCommunityContext. Entities outside the graph or outside
// any retained community get an empty slice.
func (s *Snapshot) CommunityContext(entity string) []string {
	if !s.Graph.HasNode(entity) {
		return nil
	}
	cid, ok := s.communityOf[entity]
	if !ok {
		return nil
	}
	var context []string
	for _, member := range s.Communities[cid] {
		if member == entity {
			continue
		}
		context = append(context, member)
		if len(context) >= maxCommunityContext {
			break
		}
	}
	return context
}

// Record returns the case record for a decision id. When the corpus
// held duplicate ids the first record wins.
func (s *Snapshot) Record(id string) (*legal.CaseRecord, bool) {
	rec, ok := s.recordByID[id]
	return rec, ok
}

// Records returns every corpus record, in load order.
func (s *Snapshot) Records() []legal.CaseRecord { return s.records }

// Stats summarizes the snapshot for monitoring.
type Stats struct {
	TotalNodes    int            `json:"total_nodes"`
	TotalEdges    int            `json:"total_edges"`
	Communities   int            `json:"communities"`
	EntityTypes   map[string]int `json:"entity_types"`
	AverageDegree float64        `json:"average_degree"`
	Density       float64        `json:"density"`
}

// Stats computes node, edge, community and per-type entity counts plus
// average degree and density.
func (s *Snapshot) Stats() Stats {
	st := Stats{
		TotalNodes:  s.Graph.NodeCount(),
		TotalEdges:  s.Graph.EdgeCount(),
		Communities: len(s.Communities),
		EntityTypes: make(map[string]int, 5),
	}
	for _, t := range []EntityType{TypeCase, TypeJudge, TypeConcept, TypeCaseType, TypeLawSection} {
		st.EntityTypes[string(t)] = len(s.Graph.OfType(t))
	}
	if n := st.TotalNodes; n > 0 {
		st.AverageDegree = 2.0 * float64(st.TotalEdges) / float64(n)
		if n > 1 {
			st.Density = 2.0 * float64(st.TotalEdges) / (float64(n) * float64(n-1))
		}
	}
	return st
}
