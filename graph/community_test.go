package graph

import (
	"reflect"
	"testing"

	"github.com/kittipos/lexgraph/legal"
)

// barbell builds two unit-weight triangles joined by one weak bridge.
func barbell() *Graph {
	g := New()
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		g.AddNode(id, TypeConcept)
	}
	g.UpsertEdge("a", "b", RelDealsWith, 1.0)
	g.UpsertEdge("a", "c", RelDealsWith, 1.0)
	g.UpsertEdge("b", "c", RelDealsWith, 1.0)
	g.UpsertEdge("d", "e", RelDealsWith, 1.0)
	g.UpsertEdge("d", "f", RelDealsWith, 1.0)
	g.UpsertEdge("e", "f", RelDealsWith, 1.0)
	g.UpsertEdge("c", "d", RelDealsWith, 0.1)
	return g
}

func TestModularityPartitionerSplitsBarbell(t *testing.T) {
	g := barbell()
	partition, err := ModularityPartitioner{}.Partition(g, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	// every node gets exactly one label
	if len(partition) != g.NodeCount() {
		t.Fatalf("partition covers %d of %d nodes", len(partition), g.NodeCount())
	}

	// the two triangles end up in different communities
	if partition["a"] != partition["b"] || partition["b"] != partition["c"] {
		t.Errorf("left triangle split: %v", partition)
	}
	if partition["d"] != partition["e"] || partition["e"] != partition["f"] {
		t.Errorf("right triangle split: %v", partition)
	}
	if partition["a"] == partition["d"] {
		t.Errorf("triangles merged: %v", partition)
	}
}

func TestModularityPartitionerDeterministic(t *testing.T) {
	g := barbell()
	p1, err := ModularityPartitioner{}.Partition(g, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := ModularityPartitioner{}.Partition(g, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("partitions differ across runs: %v vs %v", p1, p2)
	}
}

func TestModularityPartitionerDegenerateGraph(t *testing.T) {
	g := New()
	g.AddNode("lonely", TypeCase)
	if _, err := (ModularityPartitioner{}).Partition(g, 1.0); err == nil {
		t.Error("expected ErrDegenerateGraph for an edgeless graph")
	}

	empty := New()
	partition, err := ModularityPartitioner{}.Partition(empty, 1.0)
	if err != nil || len(partition) != 0 {
		t.Errorf("empty graph: partition=%v err=%v", partition, err)
	}
}

func TestRetainCommunitiesDropsSmall(t *testing.T) {
	g := barbell()
	g.AddNode("x", TypeCase)
	g.AddNode("y", TypeCase)
	g.UpsertEdge("x", "y", RelSimilarTo, 1.0)

	partition := map[string]int{
		"a": 0, "b": 0, "c": 0,
		"d": 1, "e": 1, "f": 1,
		"x": 2, "y": 2,
	}
	retained := RetainCommunities(g, partition, 3)
	if len(retained) != 2 {
		t.Fatalf("retained = %v, want the two triangles only", retained)
	}
	if _, ok := retained[2]; ok {
		t.Error("size-2 community was retained")
	}
	if !reflect.DeepEqual(retained[0], []string{"a", "b", "c"}) {
		t.Errorf("community 0 members = %v", retained[0])
	}
}

func TestSnapshotCommunityContext(t *testing.T) {
	g := barbell()
	communities := map[int][]string{
		0: {"a", "b", "c"},
		1: {"d", "e", "f"},
	}
	snap := NewSnapshot(g, communities, nil, nil)

	if got := snap.CommunityContext("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("CommunityContext(a) = %v, want [b c]", got)
	}
	if got := snap.CommunityContext("missing"); got != nil {
		t.Errorf("CommunityContext(missing) = %v, want nil", got)
	}

	if cid, ok := snap.CommunityOf("e"); !ok || cid != 1 {
		t.Errorf("CommunityOf(e) = %d,%v", cid, ok)
	}
}

func TestBuildDetectsCommunities(t *testing.T) {
	// three criminal cases sharing a judge and concept cluster together
	records := []legal.CaseRecord{
		{DecisionID: "1/2566", CaseType: "อาญา", Judges: []string{"สมชาย"}, Summary: "ลักทรัพย์"},
		{DecisionID: "2/2566", CaseType: "อาญา", Judges: []string{"สมชาย"}, Summary: "ลักทรัพย์"},
		{DecisionID: "3/2566", CaseType: "อาญา", Judges: []string{"สมชาย"}, Summary: "ลักทรัพย์"},
	}
	snap := NewBuilder(legal.DefaultVocabulary()).Build(records)

	if len(snap.Communities) == 0 {
		t.Fatal("expected at least one retained community")
	}
	for cid, members := range snap.Communities {
		if len(members) < 3 {
			t.Errorf("community %d has %d members, below the minimum", cid, len(members))
		}
	}
}
