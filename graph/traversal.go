package graph

import "sort"

// RelatedEntity is one entity reached by relevance propagation.
type RelatedEntity struct {
	Entity string
	Type   EntityType
	Score  float64
}

// Related walks outward from an entity with BFS, propagating a relevance
// score: the seed starts at 1.0 and each neighbor discovered at depth d
// over an edge of weight w receives score*w/(d+1). Every node keeps the
// score from the path by which it was first discovered, even if a later
// shorter or heavier path would score it higher. Results exclude the
// seed, contain no duplicates, and come back sorted by score descending,
// truncated to maxResults.
//
// An absent entity or maxDepth <= 0 yields an empty slice.
func (g *Graph) Related(entity string, maxDepth, maxResults int) []RelatedEntity {
	if !g.HasNode(entity) {
		return nil
	}

	var related []RelatedEntity
	visited := map[string]bool{entity: true}

	type item struct {
		node  string
		depth int
		score float64
	}
	queue := []item{{node: entity, depth: 0, score: 1.0}}

	for len(queue) > 0 && len(related) < maxResults {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		for _, e := range g.Neighbors(cur.node) {
			neighbor := e.Other(cur.node)
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true

			score := cur.score * e.Weight / float64(cur.depth+1)
			if neighbor != entity {
				related = append(related, RelatedEntity{
					Entity: neighbor,
					Type:   g.NodeType(neighbor),
					Score:  score,
				})
			}
			queue = append(queue, item{node: neighbor, depth: cur.depth + 1, score: score})
		}
	}

	sort.SliceStable(related, func(i, j int) bool {
		return related[i].Score > related[j].Score
	})
	if len(related) > maxResults {
		related = related[:maxResults]
	}
	return related
}

// ShortestPath returns the node sequence of one shortest path between
// two entities, endpoints included, or nil when no path exists.
func (g *Graph) ShortestPath(from, to string) []string {
	if !g.HasNode(from) || !g.HasNode(to) {
		return nil
	}
	if from == to {
		return []string{from}
	}

	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.Neighbors(cur) {
			next := e.Other(cur)
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			if next == to {
				var path []string
				for n := to; n != ""; n = parent[n] {
					path = append(path, n)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, next)
		}
	}
	return nil
}
