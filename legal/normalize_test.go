package legal

import (
	"math"
	"reflect"
	"testing"
)

func TestNormalizeJudgeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "สมชาย ใจดี", "สมชาย ใจดี"},
		{"mr prefix", "นายสมชาย ใจดี", "สมชาย ใจดี"},
		{"judge title", "ผู้พิพากษา สมชาย", "สมชาย"},
		{"head judge title", "ผู้พิพากษาหัวหน้าวิชัย ธรรมรักษ์", "วิชัย ธรรมรักษ์"},
		{"digits and punctuation", "สมชาย ใจดี (2)", "สมชาย ใจดี"},
		{"uppercase latin", "JOHN SMITH", "john smith"},
		{"extra whitespace", "  สมชาย   ใจดี  ", "สมชาย ใจดี"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeJudgeName(tt.in); got != tt.want {
				t.Errorf("NormalizeJudgeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		// identical strings match fully
		{"abc", "abc", 1.0},
		// "bcd" is the longest block: 2*3/(4+4) = 0.75
		{"abcd", "bcde", 0.75},
		// no common runes
		{"abc", "xyz", 0.0},
		// both empty counts as a full match
		{"", "", 1.0},
		// one empty
		{"abc", "", 0.0},
		// "สมชาย" inside "สมชาย ใจดี": 2*5/(5+10) = 0.6667
		{"สมชาย", "สมชาย ใจดี", 2.0 * 5 / 15},
	}
	for _, tt := range tests {
		got := SimilarityRatio(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SimilarityRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		// symmetry
		if rev := SimilarityRatio(tt.b, tt.a); math.Abs(rev-got) > 1e-9 {
			t.Errorf("SimilarityRatio not symmetric for (%q, %q): %v vs %v", tt.a, tt.b, got, rev)
		}
	}
}

func TestFindBestMatches(t *testing.T) {
	candidates := []string{"นายสมชาย ใจดี", "นางสมศรี รักธรรม", "วิชัย ธรรมรักษ์"}

	// substring containment after normalization
	got := FindBestMatches("สมชาย", candidates, 0.5)
	want := []string{"นายสมชาย ใจดี"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindBestMatches(สมชาย) = %v, want %v", got, want)
	}

	// no candidate relates to the query
	if got := FindBestMatches("ประยุทธ์", candidates, 0.5); len(got) != 0 {
		t.Errorf("FindBestMatches(ประยุทธ์) = %v, want empty", got)
	}
}

func TestTruncateText(t *testing.T) {
	// short text passes through untouched
	if got := TruncateText("hello", 10); got != "hello" {
		t.Errorf("TruncateText(short) = %q", got)
	}

	// cut point backs up to the last space when it falls late enough:
	// first 12 runes are "hello world ", last space at 11 > 12*0.8
	if got := TruncateText("hello world this is long", 12); got != "hello world..." {
		t.Errorf("TruncateText = %q, want %q", got, "hello world...")
	}

	// no late space: hard cut at max
	if got := TruncateText("abcdefghijklmnop", 10); got != "abcdefghij..." {
		t.Errorf("TruncateText = %q, want %q", got, "abcdefghij...")
	}
}

func TestExtractKeywords(t *testing.T) {
	v := DefaultVocabulary()
	got := v.ExtractKeywords("คดีหมายเลข 123/2566 มาตรา 334 ข้อหาลักทรัพย์")
	want := []string{"มาตรา 334", "123/2566", "ลักทรัพย์"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}

	if got := v.ExtractKeywords("สวัสดีครับ"); len(got) != 0 {
		t.Errorf("ExtractKeywords(no keywords) = %v, want empty", got)
	}
}

func TestExtractCaseType(t *testing.T) {
	v := DefaultVocabulary()
	tests := []struct {
		in   string
		want string
	}{
		{"สอบถามคดีแรงงาน", "แรงงาน"},
		{"เรื่องภาษีอากร", "ภาษี"},
		{"คดีอาญาเกี่ยวกับการลักทรัพย์", "อาญา"},
		{"สวัสดีครับ", ""},
	}
	for _, tt := range tests {
		if got := v.ExtractCaseType(tt.in); got != tt.want {
			t.Errorf("ExtractCaseType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectCaseType(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
		want  string
	}{
		{"theft is criminal", "จำเลยลักทรัพย์ของผู้เสียหาย", "", "อาญา"},
		{"contract breach is civil", "โจทก์ฟ้องเรียกค่าเสียหายจากการผิดสัญญา", "", "แพ่ง"},
		{"wage dispute is labor", "ลูกจ้างเรียกร้องค่าจ้างค้างจ่าย", "", "แรงงาน"},
		{"title counts too", "", "คำพิพากษาศาลปกครองสูงสุด", "ปกครอง"},
		{"nothing matches", "สวัสดีครับ", "", UnknownCaseType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCaseType(tt.text, tt.title); got != tt.want {
				t.Errorf("DetectCaseType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeUnicodeCollapsesWhitespace(t *testing.T) {
	if got := NormalizeUnicode("  a\t\nb   c "); got != "a b c" {
		t.Errorf("NormalizeUnicode = %q, want %q", got, "a b c")
	}
}
