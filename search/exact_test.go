package search

import (
	"testing"

	"github.com/kittipos/lexgraph/legal"
)

func searchRecords() []legal.CaseRecord {
	return []legal.CaseRecord{
		{
			DecisionID: "123/2566",
			Title:      "คำพิพากษาศาลฎีกาที่ 123/2566",
			Summary:    "จำเลยลักทรัพย์ในเคหสถานเวลากลางคืน ศาลพิพากษาจำคุก",
			CaseType:   "อาญา",
			Judges:     []string{"นายสมชาย ใจดี"},
			Keywords:   []string{"ลักทรัพย์"},
		},
		{
			DecisionID: "124/2566",
			Title:      "คำพิพากษาศาลฎีกาที่ 124/2566",
			Summary:    "จำเลยผิดสัญญาซื้อขายที่ดิน โจทก์เรียกค่าเสียหาย",
			CaseType:   "แพ่ง",
			Judges:     []string{"นางวิภา รักธรรม"},
		},
		{
			DecisionID: "125/2566",
			Title:      "คำพิพากษาศาลฎีกาที่ 125/2566",
			Summary:    "จำเลยบุกรุกเคหสถานของผู้เสียหาย",
			CaseType:   "อาญา",
			Judges:     []string{"นายสมชาย ใจดี"},
		},
	}
}

func TestByCaseNumber(t *testing.T) {
	e := NewExactEngine(searchRecords())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"slash form", "123/2566", []string{"123/2566"}},
		{"dash form", "123-2566", []string{"123/2566"}},
		{"surrounding space", "  124/2566 ", []string{"124/2566"}},
		{"no such case", "999/2500", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ByCaseNumber(tt.query, 5)
			if len(got) != len(tt.want) {
				t.Fatalf("ByCaseNumber(%q) returned %d hits, want %d", tt.query, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].DecisionID != id {
					t.Errorf("hit %d = %s, want %s", i, got[i].DecisionID, id)
				}
				if got[i].Similarity != 1.0 {
					t.Errorf("hit %d similarity = %v, want 1.0", i, got[i].Similarity)
				}
			}
		})
	}
}

func TestByJudge(t *testing.T) {
	e := NewExactEngine(searchRecords())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"partial name", "สมชาย", []string{"123/2566", "125/2566"}},
		{"with honorific", "ผู้พิพากษา สมชาย", []string{"123/2566", "125/2566"}},
		// one rune dropped, similarity ratio 2*9/19 well above threshold
		{"fuzzy spelling", "สมชา ใจดี", []string{"123/2566", "125/2566"}},
		{"other judge", "วิภา", []string{"124/2566"}},
		{"unknown judge", "วีระ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ByJudge(tt.query, 5)
			if len(got) != len(tt.want) {
				t.Fatalf("ByJudge(%q) returned %d hits, want %d", tt.query, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].DecisionID != id {
					t.Errorf("hit %d = %s, want %s", i, got[i].DecisionID, id)
				}
			}
		})
	}
}

func TestByCaseType(t *testing.T) {
	e := NewExactEngine(searchRecords())

	if got := e.ByCaseType("อาญา", 5); len(got) != 2 {
		t.Fatalf("ByCaseType(อาญา) returned %d hits, want 2", len(got))
	}
	if got := e.ByCaseType("แพ่ง", 5); len(got) != 1 || got[0].DecisionID != "124/2566" {
		t.Fatalf("ByCaseType(แพ่ง) = %+v, want single hit 124/2566", got)
	}
	if got := e.ByCaseType("ล้มละลาย", 5); len(got) != 0 {
		t.Fatalf("ByCaseType(ล้มละลาย) returned %d hits, want 0", len(got))
	}
	if got := e.ByCaseType("อาญา", 1); len(got) != 1 {
		t.Fatalf("ByCaseType with k=1 returned %d hits, want 1", len(got))
	}
}

func TestResultTextTruncated(t *testing.T) {
	long := make([]rune, 0, 400)
	for i := 0; i < 400; i++ {
		long = append(long, 'ก')
	}
	rec := legal.CaseRecord{DecisionID: "200/2566", Summary: string(long)}
	res := resultFromRecord(&rec, 1.0, "")
	if got := len([]rune(res.Text)); got > maxDisplayLength+3 {
		t.Errorf("result text is %d runes, want at most %d plus ellipsis", got, maxDisplayLength)
	}
	if res.FullSummary != rec.Summary {
		t.Error("full summary should carry the untruncated text")
	}
	if res.CaseType != legal.UnknownCaseType {
		t.Errorf("missing case type mapped to %q, want %q", res.CaseType, legal.UnknownCaseType)
	}
}
