// Package graph builds and queries the legal knowledge graph: typed
// entities extracted from case records, multi-relation weighted edges,
// community detection, and score-propagating traversal.
package graph

// EntityType classifies a graph node.
type EntityType string

const (
	TypeCase       EntityType = "case"
	TypeJudge      EntityType = "judge"
	TypeConcept    EntityType = "legal_concept"
	TypeCaseType   EntityType = "case_type"
	TypeLawSection EntityType = "law_section"
	TypeUnknown    EntityType = "unknown"
)

// Relation labels an edge.
type Relation string

const (
	RelContains  Relation = "contains"
	RelHandles   Relation = "handles"
	RelDealsWith Relation = "deals_with"
	RelSimilarTo Relation = "similar_to"
)

// Edge is an undirected weighted edge. Source and Target are stored in
// insertion order; use Other to walk from either endpoint.
type Edge struct {
	Source   string
	Target   string
	Relation Relation
	Weight   float64
}

// Other returns the endpoint opposite to id.
func (e *Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// edgeKey identifies an edge by its unordered endpoint pair and relation.
type edgeKey struct {
	a, b string
	rel  Relation
}

func newEdgeKey(u, v string, rel Relation) edgeKey {
	if u > v {
		u, v = v, u
	}
	return edgeKey{a: u, b: v, rel: rel}
}

// Graph is an undirected multi-relation graph with typed nodes. At most
// one edge exists per unordered node pair and relation label; upserting
// an existing edge replaces its weight. Node and adjacency iteration
// follow insertion order, so a graph built from the same input twice is
// identical.
//
// Graph is not safe for concurrent mutation. Built graphs are published
// read-only inside a Snapshot.
type Graph struct {
	types     map[string]EntityType
	nodeOrder []string
	byType    map[EntityType][]string
	edges     map[edgeKey]*Edge
	edgeOrder []*Edge
	adj       map[string][]*Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		types:  make(map[string]EntityType),
		byType: make(map[EntityType][]string),
		edges:  make(map[edgeKey]*Edge),
		adj:    make(map[string][]*Edge),
	}
}

// AddNode registers an entity. The first-seen type wins; re-adding an
// existing node is a no-op.
func (g *Graph) AddNode(id string, t EntityType) {
	if id == "" {
		return
	}
	if _, ok := g.types[id]; ok {
		return
	}
	g.types[id] = t
	g.nodeOrder = append(g.nodeOrder, id)
	g.byType[t] = append(g.byType[t], id)
}

// UpsertEdge adds an edge between u and v, creating missing endpoints as
// untyped nodes. If the pair already carries an edge with this relation,
// only the weight is replaced.
func (g *Graph) UpsertEdge(u, v string, rel Relation, weight float64) {
	if u == "" || v == "" || u == v {
		return
	}
	g.AddNode(u, TypeUnknown)
	g.AddNode(v, TypeUnknown)

	key := newEdgeKey(u, v, rel)
	if e, ok := g.edges[key]; ok {
		e.Weight = weight
		return
	}
	e := &Edge{Source: u, Target: v, Relation: rel, Weight: weight}
	g.edges[key] = e
	g.edgeOrder = append(g.edgeOrder, e)
	g.adj[u] = append(g.adj[u], e)
	g.adj[v] = append(g.adj[v], e)
}

// EdgeBetween returns the first edge between u and v regardless of
// relation.
func (g *Graph) EdgeBetween(u, v string) (*Edge, bool) {
	for _, e := range g.adj[u] {
		if e.Other(u) == v {
			return e, true
		}
	}
	return nil, false
}

// EdgeWeight reports the weight of the edge between u and v with the
// given relation, if present.
func (g *Graph) EdgeWeight(u, v string, rel Relation) (float64, bool) {
	e, ok := g.edges[newEdgeKey(u, v, rel)]
	if !ok {
		return 0, false
	}
	return e.Weight, true
}

// HasNode reports whether the entity exists in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.types[id]
	return ok
}

// NodeType returns the entity's type, or TypeUnknown for absent nodes.
func (g *Graph) NodeType(id string) EntityType {
	if t, ok := g.types[id]; ok {
		return t
	}
	return TypeUnknown
}

// Nodes returns all entities in insertion order. The returned slice is
// shared; callers must not modify it.
func (g *Graph) Nodes() []string { return g.nodeOrder }

// OfType returns the entities of the given type in insertion order.
func (g *Graph) OfType(t EntityType) []string { return g.byType[t] }

// Neighbors returns the edges incident to id in insertion order.
func (g *Graph) Neighbors(id string) []*Edge { return g.adj[id] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodeOrder) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Degree returns the number of edges incident to id.
func (g *Graph) Degree(id string) int { return len(g.adj[id]) }

// Edges calls fn for every edge in insertion order.
func (g *Graph) Edges(fn func(*Edge)) {
	for _, e := range g.edgeOrder {
		fn(e)
	}
}

// TotalWeight returns the sum of all edge weights.
func (g *Graph) TotalWeight() float64 {
	var total float64
	for _, e := range g.edgeOrder {
		total += e.Weight
	}
	return total
}

// Strength returns the sum of weights of edges incident to id.
func (g *Graph) Strength(id string) float64 {
	var s float64
	for _, e := range g.adj[id] {
		s += e.Weight
	}
	return s
}
