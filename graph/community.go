package graph

import "errors"

// Partitioner assigns every node of a graph to a community. The
// resolution parameter tunes community granularity: values above 1.0
// favor more, smaller communities.
//
// Implementations must be deterministic for a given graph.
type Partitioner interface {
	Partition(g *Graph, resolution float64) (map[string]int, error)
}

// ErrDegenerateGraph is returned when a graph has no weighted edges to
// optimize over. Callers treat it as "no communities", not as fatal.
var ErrDegenerateGraph = errors.New("graph: no weighted edges for community detection")

// ModularityPartitioner is the default Partitioner: a single-level
// greedy weighted-modularity pass (the local-move phase of Louvain).
// Nodes start in singleton communities and are repeatedly moved to the
// neighboring community with the best modularity gain until no move
// improves, capped at maxPasses sweeps. Nodes are visited in the graph's
// insertion order and ties keep the current community, so the result is
// deterministic.
type ModularityPartitioner struct{}

// maxPasses bounds the local-move sweeps.
const maxPasses = 20

func (ModularityPartitioner) Partition(g *Graph, resolution float64) (map[string]int, error) {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return map[string]int{}, nil
	}

	idx := make(map[string]int, n)
	for i, id := range nodes {
		idx[id] = i
	}

	strength := make([]float64, n)
	for i, id := range nodes {
		strength[i] = g.Strength(id)
	}

	m2 := 2.0 * g.TotalWeight()
	if m2 == 0 {
		return nil, ErrDegenerateGraph
	}

	community := make([]int, n)
	for i := range community {
		community[i] = i
	}
	commStrength := make([]float64, n)
	copy(commStrength, strength)

	for pass := 0; pass < maxPasses; pass++ {
		moved := false
		for i, id := range nodes {
			// Weight from node i to each neighboring community,
			// candidates collected in adjacency order.
			commWeights := make(map[int]float64)
			var candidates []int
			for _, e := range g.Neighbors(id) {
				j := idx[e.Other(id)]
				c := community[j]
				if _, ok := commWeights[c]; !ok {
					candidates = append(candidates, c)
				}
				commWeights[c] += e.Weight
			}

			current := community[i]
			ki := strength[i]
			removeDelta := commWeights[current]/m2 -
				resolution*(commStrength[current]-ki)*ki/(m2*m2)

			best := current
			bestGain := 0.0
			for _, c := range candidates {
				if c == current {
					continue
				}
				gain := (commWeights[c]/m2 - resolution*commStrength[c]*ki/(m2*m2)) - removeDelta
				if gain > bestGain {
					bestGain = gain
					best = c
				}
			}

			if best != current {
				commStrength[current] -= ki
				commStrength[best] += ki
				community[i] = best
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	// Renumber labels by first appearance over node order.
	relabel := make(map[int]int)
	partition := make(map[string]int, n)
	for i, id := range nodes {
		label, ok := relabel[community[i]]
		if !ok {
			label = len(relabel)
			relabel[community[i]] = label
		}
		partition[id] = label
	}
	return partition, nil
}

// RetainCommunities groups a partition into member lists and drops
// communities smaller than minSize. Members keep the graph's node order.
func RetainCommunities(g *Graph, partition map[string]int, minSize int) map[int][]string {
	grouped := make(map[int][]string)
	for _, id := range g.Nodes() {
		c, ok := partition[id]
		if !ok {
			continue
		}
		grouped[c] = append(grouped[c], id)
	}
	retained := make(map[int][]string)
	for c, members := range grouped {
		if len(members) >= minSize {
			retained[c] = members
		}
	}
	return retained
}
