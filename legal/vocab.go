package legal

import (
	"encoding/json"
	"fmt"
	"os"
)

// UnknownCaseType is the placeholder used when a record carries no usable
// case type. It is never turned into a graph entity.
const UnknownCaseType = "ไม่ระบุ"

// Vocabulary is the table-driven word list backing entity extraction,
// query-entity detection, and case-type recognition. Keeping these as data
// (rather than hard-coded branches) lets a deployment extend the word
// lists without touching traversal or scoring logic.
type Vocabulary struct {
	// Concepts are the legal-concept terms scanned for in case text
	// during graph construction (substring match on lowercased text).
	Concepts []string `json:"concepts"`

	// QueryConcepts are the legal-concept terms recognized inside a
	// user query when discovering graph entities.
	QueryConcepts []string `json:"query_concepts"`

	// QueryCaseTypes are the case-type words recognized inside a user
	// query when discovering graph entities.
	QueryCaseTypes []string `json:"query_case_types"`

	// CaseTypeKeywords maps a keyword found in free text to the
	// canonical case type it implies. Order matters: the first match
	// wins, so longer forms ("คดีอาญา") must precede their stems.
	CaseTypeKeywords []CaseTypeKeyword `json:"case_type_keywords"`
}

// CaseTypeKeyword is a single keyword → canonical case type mapping.
type CaseTypeKeyword struct {
	Keyword  string `json:"keyword"`
	CaseType string `json:"case_type"`
}

// DefaultVocabulary returns the built-in Thai legal vocabulary.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Concepts: []string{
			"ลักทรัพย์", "บุกรุก", "เคหสถาน", "พยายาม", "ฆ่า", "ทำร้าย", "โจรกรรม",
			"ฉ้อโกง", "ยักยอก", "ข่มขืน", "ลูกหนี้", "เจ้าหนี้", "สัญญา", "ผิดสัญญา",
			"ค่าเสียหาย", "ดอกเบี้ย", "จำนอง", "จำนำ", "หย่า", "อุปการะ", "มรดก",
			"ที่ดิน", "กรรมสิทธิ์", "ข้าราชการ", "ทุจริต", "ประมูล", "ภาษี", "อากร",
			"ครอบครัว", "บุตร", "สมรส", "แรงงาน", "ลูกจ้าง", "นายจ้าง",
		},
		QueryConcepts: []string{
			"ลักทรัพย์", "บุกรุก", "เคหสถาน", "พยายาม", "ฆ่า", "ทำร้าย", "โจรกรรม",
			"ฉ้อโกง", "ยักยอก", "ข่มขืน", "ลูกหนี้", "เจ้าหนี้", "สัญญา", "ผิดสัญญา",
			"ค่าเสียหาย", "ดอกเบี้ย", "จำนอง", "จำนำ", "หย่า", "อุปการะ", "มรดก",
			"ที่ดิน", "กรรมสิทธิ์", "ข้าราชการ", "ทุจริต", "ประมูล", "ภาษี", "อากร",
		},
		QueryCaseTypes: []string{
			"อาญา", "แพ่ง", "แรงงาน", "ภาษี", "ปกครอง", "ครอบครัว",
		},
		CaseTypeKeywords: []CaseTypeKeyword{
			{"คดีอาญา", "อาญา"},
			{"คดีแพ่ง", "แพ่ง"},
			{"คดีแรงงาน", "แรงงาน"},
			{"คดีภาษี", "ภาษี"},
			{"อาญา", "อาญา"},
			{"แพ่ง", "แพ่ง"},
			{"แรงงาน", "แรงงาน"},
			{"ภาษี", "ภาษี"},
			{"ปกครอง", "ปกครอง"},
			{"ครอบครัว", "ครอบครัว"},
			{"ล้มละลาย", "ล้มละลาย"},
			{"ทรัพย์สินทางปัญญา", "ทรัพย์สินทางปัญญา"},
		},
	}
}

// LoadVocabulary reads a vocabulary file (JSON) and overlays it on the
// defaults: any empty field keeps its built-in table.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}

	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing vocabulary file: %w", err)
	}

	def := DefaultVocabulary()
	if len(v.Concepts) == 0 {
		v.Concepts = def.Concepts
	}
	if len(v.QueryConcepts) == 0 {
		v.QueryConcepts = def.QueryConcepts
	}
	if len(v.QueryCaseTypes) == 0 {
		v.QueryCaseTypes = def.QueryCaseTypes
	}
	if len(v.CaseTypeKeywords) == 0 {
		v.CaseTypeKeywords = def.CaseTypeKeywords
	}
	return &v, nil
}

// ExtractCaseType returns the canonical case type implied by a keyword
// found in the text, or "" when no keyword matches.
func (v *Vocabulary) ExtractCaseType(text string) string {
	for _, kw := range v.CaseTypeKeywords {
		if containsFold(text, kw.Keyword) {
			return kw.CaseType
		}
	}
	return ""
}
