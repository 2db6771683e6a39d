package graph

import (
	"math"
	"reflect"
	"testing"

	"github.com/kittipos/lexgraph/legal"
)

func TestExtract(t *testing.T) {
	ex := NewExtractor(legal.DefaultVocabulary())

	rec := &legal.CaseRecord{
		DecisionID: "123/2566",
		CaseType:   "อาญา",
		Judges:     []string{" สมชาย ใจดี ", "", "วิชัย ธรรมรักษ์"},
		RelatedSections: map[string][]string{
			"ประมวลกฎหมายอาญา": {"334", "335"},
		},
		Summary: "จำเลยลักทรัพย์และบุกรุกเคหสถาน",
	}

	x := ex.Extract(rec)

	if !reflect.DeepEqual(x.Cases, []string{"123/2566"}) {
		t.Errorf("Cases = %v", x.Cases)
	}
	if !reflect.DeepEqual(x.Judges, []string{"สมชาย ใจดี", "วิชัย ธรรมรักษ์"}) {
		t.Errorf("Judges = %v, want trimmed non-empty names", x.Judges)
	}
	if !reflect.DeepEqual(x.CaseTypes, []string{"อาญา"}) {
		t.Errorf("CaseTypes = %v", x.CaseTypes)
	}
	want := []string{"ประมวลกฎหมายอาญา 334", "ประมวลกฎหมายอาญา 335"}
	if !reflect.DeepEqual(x.LawSections, want) {
		t.Errorf("LawSections = %v, want %v", x.LawSections, want)
	}
	// summary contains ลักทรัพย์, บุกรุก and เคหสถาน
	if !reflect.DeepEqual(x.Concepts, []string{"ลักทรัพย์", "บุกรุก", "เคหสถาน"}) {
		t.Errorf("Concepts = %v", x.Concepts)
	}
}

func TestExtractSkipsUnknownCaseTypeAndEmptyID(t *testing.T) {
	ex := NewExtractor(legal.DefaultVocabulary())

	x := ex.Extract(&legal.CaseRecord{DecisionID: "1/2560", CaseType: legal.UnknownCaseType})
	if len(x.CaseTypes) != 0 {
		t.Errorf("CaseTypes = %v, want empty for placeholder type", x.CaseTypes)
	}

	x = ex.Extract(&legal.CaseRecord{CaseType: "อาญา", Judges: []string{"สมชาย"}})
	if !x.Empty() {
		t.Errorf("extraction of record without id = %+v, want empty", x)
	}
}

func TestExtractPrefersSummaryOverFullText(t *testing.T) {
	ex := NewExtractor(legal.DefaultVocabulary())
	x := ex.Extract(&legal.CaseRecord{
		DecisionID: "2/2560",
		Summary:    "ข้อพิพาทเรื่องสัญญา",
		FullText:   "ลักทรัพย์",
	})
	if !reflect.DeepEqual(x.Concepts, []string{"สัญญา"}) {
		t.Errorf("Concepts = %v, want concepts from summary only", x.Concepts)
	}
}

func buildTestSnapshot(t *testing.T, records []legal.CaseRecord) *Snapshot {
	t.Helper()
	return NewBuilder(legal.DefaultVocabulary()).Build(records)
}

func TestBuildCaseRelationships(t *testing.T) {
	records := []legal.CaseRecord{
		{
			DecisionID: "1/2566", CaseType: "อาญา",
			Judges:  []string{"สมชาย"},
			Summary: "ลักทรัพย์",
		},
		{
			DecisionID: "2/2566", CaseType: "อาญา",
			Judges:  []string{"สมชาย"},
			Summary: "ลักทรัพย์",
		},
	}
	snap := buildTestSnapshot(t, records)
	g := snap.Graph

	if g.NodeType("1/2566") != TypeCase || g.NodeType("สมชาย") != TypeJudge {
		t.Fatalf("node types wrong: %v %v", g.NodeType("1/2566"), g.NodeType("สมชาย"))
	}
	if g.NodeType("อาญา") != TypeCaseType || g.NodeType("ลักทรัพย์") != TypeConcept {
		t.Fatalf("node types wrong: %v %v", g.NodeType("อาญา"), g.NodeType("ลักทรัพย์"))
	}

	if _, ok := g.EdgeWeight("1/2566", "สมชาย", RelContains); !ok {
		t.Error("missing contains edge case->judge")
	}
	if _, ok := g.EdgeWeight("สมชาย", "อาญา", RelHandles); !ok {
		t.Error("missing handles edge judge->case type")
	}

	// both cases pair the same judge with the same concept, so the
	// deals_with weight accumulates to 2
	w, ok := g.EdgeWeight("สมชาย", "ลักทรัพย์", RelDealsWith)
	if !ok || w != 2.0 {
		t.Errorf("deals_with weight = %v (%v), want 2", w, ok)
	}

	// identical summaries give cosine similarity 1.0, above threshold
	w, ok = g.EdgeWeight("1/2566", "2/2566", RelSimilarTo)
	if !ok || math.Abs(w-1.0) > 1e-9 {
		t.Errorf("similar_to weight = %v (%v), want 1.0", w, ok)
	}

	// cases never contain each other
	if _, ok := g.EdgeWeight("1/2566", "2/2566", RelContains); ok {
		t.Error("unexpected contains edge between two cases")
	}
}

func TestBuildSkipsMalformedRecords(t *testing.T) {
	records := []legal.CaseRecord{
		{DecisionID: "", Title: "no id"},
		{DecisionID: "9/2566", CaseType: "แพ่ง"},
	}
	snap := buildTestSnapshot(t, records)
	if got := snap.Graph.OfType(TypeCase); !reflect.DeepEqual(got, []string{"9/2566"}) {
		t.Errorf("case nodes = %v, want only the well-formed record", got)
	}
}

func TestBuildSingleDocumentSkipsSimilarity(t *testing.T) {
	snap := buildTestSnapshot(t, []legal.CaseRecord{
		{DecisionID: "1/2566", Summary: "ลักทรัพย์"},
	})
	snap.Graph.Edges(func(e *Edge) {
		if e.Relation == RelSimilarTo {
			t.Errorf("unexpected similar_to edge %v-%v with a single document", e.Source, e.Target)
		}
	})
}

func TestTfidfCosine(t *testing.T) {
	// Two documents sharing one of their two terms.
	// idf(aa) = ln(3/3)+1 = 1, idf(bb) = idf(cc) = ln(3/2)+1.
	// Each vector is (1, ln(1.5)+1) normalized, so the cosine is
	// 1 / (1 + (ln(1.5)+1)^2) = 0.33609.
	vecs := tfidfVectors([]string{"aa bb", "aa cc"}, 1000)
	got := dotSparse(vecs[0], vecs[1])
	idf := math.Log(1.5) + 1
	want := 1.0 / (1.0 + idf*idf)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("cosine = %v, want %v", got, want)
	}
}

func TestSimilarityThresholdCutoff(t *testing.T) {
	// The pair above sits at cosine 0.336: an edge appears with the
	// threshold at 0.25 and disappears at 0.35.
	records := []legal.CaseRecord{
		{DecisionID: "1/2566", Summary: "aa bb"},
		{DecisionID: "2/2566", Summary: "aa cc"},
	}

	b := NewBuilder(legal.DefaultVocabulary())
	b.SimilarityThreshold = 0.25
	snap := b.Build(records)
	if _, ok := snap.Graph.EdgeWeight("1/2566", "2/2566", RelSimilarTo); !ok {
		t.Error("expected similar_to edge at threshold 0.25")
	}

	b = NewBuilder(legal.DefaultVocabulary())
	b.SimilarityThreshold = 0.35
	snap = b.Build(records)
	if _, ok := snap.Graph.EdgeWeight("1/2566", "2/2566", RelSimilarTo); ok {
		t.Error("unexpected similar_to edge at threshold 0.35")
	}
}

func TestTfidfMaxFeatures(t *testing.T) {
	// "aa" appears three times, "bb" twice, "cc" once. With two
	// features only aa and bb survive, so a document made of cc alone
	// vectorizes to nothing.
	vecs := tfidfVectors([]string{"aa aa bb", "aa bb cc"}, 2)
	if w, ok := vecs[1][0]; !ok || w == 0 {
		t.Errorf("expected aa to survive the feature cap, vec = %v", vecs[1])
	}
	if len(vecs[1]) != 2 {
		t.Errorf("doc 1 vector = %v, want exactly the two retained features", vecs[1])
	}
}

func TestSnapshotStats(t *testing.T) {
	snap := buildTestSnapshot(t, []legal.CaseRecord{
		{DecisionID: "1/2566", CaseType: "อาญา", Judges: []string{"สมชาย"}, Summary: "ลักทรัพย์"},
	})
	st := snap.Stats()
	// nodes: case, judge, case type, concept
	if st.TotalNodes != 4 {
		t.Errorf("TotalNodes = %d, want 4", st.TotalNodes)
	}
	// contains x3, handles x1, deals_with x1
	if st.TotalEdges != 5 {
		t.Errorf("TotalEdges = %d, want 5", st.TotalEdges)
	}
	if st.EntityTypes["case"] != 1 || st.EntityTypes["judge"] != 1 {
		t.Errorf("EntityTypes = %v", st.EntityTypes)
	}
	if math.Abs(st.AverageDegree-2.5) > 1e-9 {
		t.Errorf("AverageDegree = %v, want 2.5", st.AverageDegree)
	}
}
