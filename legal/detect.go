package legal

import (
	"regexp"
	"strings"
)

// caseTypePatterns are checked in order; the first group with a match
// decides the type. Criminal indicators win over civil ones because the
// criminal vocabulary is the more specific of the two.
var caseTypePatterns = []struct {
	caseType string
	patterns []*regexp.Regexp
}{
	{"อาญา", []*regexp.Regexp{
		regexp.MustCompile(`ลักทรัพย์|โจรกรรม|ฆ่า|ทำร้าย|ข่มขืน|ฉ้อโกง|ยักยอก|บุกรุก|พยายาม`),
		regexp.MustCompile(`ประมวลกฎหมายอาญา|มาตรา\s*\d+.*อาญา|ความผิดฐาน`),
		regexp.MustCompile(`จำเลย|โจทก์.*อัยการ|พนักงานอัยการ`),
	}},
	{"แพ่ง", []*regexp.Regexp{
		regexp.MustCompile(`ผิดสัญญา|ค่าเสียหาย|ดอกเบี้ย|จำนอง|จำนำ|หนี้|เจ้าหนี้|ลูกหนี้`),
		regexp.MustCompile(`ประมวลกฎหมายแพ่ง|กรรมสิทธิ์|ที่ดิน|อสังหาริมทรัพย์`),
		regexp.MustCompile(`หย่า|อุปการะ|มรดก|ทรัพย์สิน|นิติกรรม`),
	}},
	{"ปกครอง", []*regexp.Regexp{
		regexp.MustCompile(`ข้าราชการ|เจ้าหน้าที่|ภาษี|อากร|ใบอนุญาต|ประมูล`),
		regexp.MustCompile(`กฎหมายปกครอง|ศาลปกครอง|การจัดซื้อ|การจัดจ้าง`),
	}},
	{"แรงงาน", []*regexp.Regexp{
		regexp.MustCompile(`ลูกจ้าง|นายจ้าง|ค่าจ้าง|ค่าแรง|เงินชดเชย|ประกันสังคม`),
		regexp.MustCompile(`กฎหมายแรงงาน|ศาลแรงงาน|การเลิกจ้าง`),
	}},
}

// DetectCaseType classifies a decision from its title and body text.
// Returns UnknownCaseType when nothing matches.
func DetectCaseType(text, title string) string {
	combined := strings.ToLower(title + " " + text)
	for _, group := range caseTypePatterns {
		for _, re := range group.patterns {
			if re.MatchString(combined) {
				return group.caseType
			}
		}
	}
	return UnknownCaseType
}
