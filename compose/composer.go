// Package compose turns ranked search results into a grounded Thai
// answer through an llm.Provider. The graph and search layers stay
// free of prompt text; everything conversational lives here.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kittipos/lexgraph/llm"
	"github.com/kittipos/lexgraph/search"
)

var (
	// Queries that carry a docket number are always legal queries.
	caseNumberRe = regexp.MustCompile(`\d{1,6}/\d{2,4}`)

	judgeMentionRe = regexp.MustCompile(`ผู้พิพากษา\s*[\p{L}\p{M}\p{N}_\s]+`)
)

// legalKeywords marks a query as in-domain when any of them appears.
var legalKeywords = []string{
	"คดี", "หมายเลขคดี", "คำพิพากษา", "ผู้พิพากษา", "อาญา", "แพ่ง", "แรงงาน", "ภาษี",
	"จำเลย", "โจทก์", "ฎีกา", "ฟ้อง", "คำสั่ง", "ศาล", "กฎหมาย", "มาตรา", "พระราชบัญญัติ",
	"ประมวลกฎหมาย", "ข้อบังคับ", "กฎกระทรวง", "คดีความ", "ประเด็นกฎหมาย", "คำฟ้อง",
	"คำร้อง", "อุทธรณ์", "ฟื้นฟูคดี", "ล้มละลาย", "หย่าร้าง", "มรดก", "ทรัพย์สิน",
	"สัญญา", "ละเมิด", "ความรับผิด", "ค่าเสียหาย", "ดอกเบี้ย", "ประกัน", "จำนำ",
	"จำนอง", "เช่า", "ขาย", "ซื้อ", "บริษัท", "ห้างหุ้นส่วน", "ลิขสิทธิ์", "สิทธิบัตร",
	"เครื่องหมายการค้า", "ครอบครัว", "บุตร", "สมรส", "อำนาจปกครอง", "ปกครอง",
	"ทหาร", "ตำรวจ", "รัฐ", "ข้าราชการ", "พนักงาน", "ลูกจ้าง", "นายจ้าง", "สหภาพแรงงาน",
}

// nonLegalResponse answers queries outside the legal domain.
const nonLegalResponse = `ระบบนี้ตอบเฉพาะคำถามเกี่ยวกับคดีเท่านั้น

สามารถสอบถามได้เกี่ยวกับ:
- หมายเลขคดี (เช่น 1234/2567)
- ชื่อผู้พิพากษา
- ประเภทคดี (อาญา, แพ่ง, แรงงาน, ภาษี)
- ประเด็นกฎหมายที่เกี่ยวข้อง
- คำพิพากษาที่คล้ายคลึง

กรุณาระบุข้อมูลคดีที่ต้องการค้นหา`

// noResultsResponse answers legal queries that matched no case.
const noResultsResponse = `ไม่พบข้อมูลคดีที่เกี่ยวข้อง

ข้อเสนอแนะ:
- ลองใช้หมายเลขคดีที่ชัดเจน (เช่น 1234/2567)
- ระบุชื่อผู้พิพากษาที่ต้องการค้นหา
- ระบุประเภทคดี (อาญา, แพ่ง, แรงงาน, ภาษี)
- ใช้คำค้นหาที่เกี่ยวข้องกับกฎหมาย`

// maxConceptsInContext bounds related concepts quoted per case.
const maxConceptsInContext = 3

// Composer drafts answers from ranked results.
type Composer struct {
	provider llm.Provider
	model    string
}

// NewComposer returns a composer over the provider. model may be empty,
// in which case the provider's configured model is used.
func NewComposer(provider llm.Provider, model string) *Composer {
	return &Composer{provider: provider, model: model}
}

// IsLegalQuery reports whether the query is about legal cases: a docket
// number, a judge mention, or any domain keyword qualifies.
func IsLegalQuery(query string) bool {
	if caseNumberRe.MatchString(query) || judgeMentionRe.MatchString(query) {
		return true
	}
	for _, kw := range legalKeywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

// NonLegalResponse is the canned answer for out-of-domain queries.
func NonLegalResponse() string { return nonLegalResponse }

// NoResultsResponse is the canned answer when nothing matched.
func NoResultsResponse() string { return noResultsResponse }

// Compose drafts an answer grounded in the results. Out-of-domain
// queries and empty result sets get canned responses without touching
// the provider.
func (c *Composer) Compose(ctx context.Context, query string, results []search.CaseResult, method string) (string, error) {
	if !IsLegalQuery(query) {
		return nonLegalResponse, nil
	}
	if len(results) == 0 {
		return noResultsResponse, nil
	}

	prompt := buildPrompt(query, results, method)
	resp, err := c.provider.Chat(ctx, llm.ChatRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("composing answer: %w", err)
	}
	slog.Info("compose: answer drafted",
		"cases", len(results),
		"method", method,
		"tokens", resp.TotalTokens,
	)
	return strings.TrimSpace(resp.Content) + searchStats(results, method), nil
}

// buildPrompt assembles the grounding block and instructions.
func buildPrompt(query string, results []search.CaseResult, method string) string {
	var blocks []string
	seen := make(map[string]bool)

	for _, res := range results {
		if res.DecisionID == "" || seen[res.DecisionID] {
			continue
		}
		seen[res.DecisionID] = true

		judges := "ไม่ระบุ"
		if len(res.Judges) > 0 {
			judges = strings.Join(res.Judges, ", ")
		}

		text := res.FullSummary
		if text == "" {
			text = res.Text
		}

		var graphInfo string
		if res.GraphContext != nil && len(res.GraphContext.RelatedConcepts) > 0 {
			var concepts []string
			for _, ref := range res.GraphContext.RelatedConcepts {
				concepts = append(concepts, ref.Entity)
				if len(concepts) >= maxConceptsInContext {
					break
				}
			}
			graphInfo = fmt.Sprintf(" (แนวคิดที่เกี่ยวข้อง: %s)", strings.Join(concepts, ", "))
		}

		var litigantsInfo string
		if p := res.Litigants["โจทก์"]; p != "" {
			litigantsInfo += "\nโจทก์: " + p
		}
		if d := res.Litigants["จำเลย"]; d != "" {
			litigantsInfo += "\nจำเลย: " + d
		}

		header := fmt.Sprintf("คดี %s (ประเภท: %s) ผู้พิพากษา: %s%s%s",
			res.DecisionID, res.CaseType, judges, graphInfo, litigantsInfo)
		blocks = append(blocks, header+"\n"+text)
	}

	return fmt.Sprintf(`คุณเป็นผู้ช่วยทางกฎหมายไทยที่เชี่ยวชาญในการวิเคราะห์คำพิพากษา พร้อมระบบวิเคราะห์ความเชื่อมโยงระหว่างคดี

ข้อมูลคดีที่เกี่ยวข้อง (ค้นหาด้วย %s):
%s

คำถาม: %s

กรุณาวิเคราะห์ข้อความคำพิพากษาที่ให้มาอย่างละเอียดและครบถ้วน แล้วตอบในรูปแบบต่อไปนี้:

## ข้อมูลคดี
- หมายเลขคดี, ประเภท, โจทก์, จำเลย, ผู้พิพากษา

## สรุปคำพิพากษา
- ข้อเท็จจริง
- ประเด็นกฎหมายสำคัญ
- การพิจารณาของศาลชั้นต้น ศาลอุทธรณ์ และศาลฎีกา (ถ้ามี)
- มาตราที่เกี่ยวข้อง
- ผลการตัดสิน
- หลักการสำคัญ

## ความเชื่อมโยง
- ความเชื่อมโยงกับคดีอื่นหรือแนวคิดทางกฎหมายที่เกี่ยวข้อง

หลักการ: ใช้เฉพาะข้อมูลจากคำพิพากษาที่ให้มา สกัดข้อมูลทุกส่วนที่มีอยู่
และนำเสนออย่างครบถ้วน อย่าแต่งเติมข้อเท็จจริงที่ไม่ปรากฏในข้อความ`,
		method, strings.Join(blocks, "\n---\n"), query)
}

// searchStats summarizes provenance under the drafted answer.
func searchStats(results []search.CaseResult, method string) string {
	uniqueCases := make(map[string]bool)
	caseTypes := make(map[string]bool)
	var typeOrder []string
	judges := make(map[string]bool)
	discovered := 0

	for _, res := range results {
		uniqueCases[res.DecisionID] = true
		if res.CaseType != "" && !caseTypes[res.CaseType] {
			caseTypes[res.CaseType] = true
			typeOrder = append(typeOrder, res.CaseType)
		}
		for _, j := range res.Judges {
			judges[j] = true
		}
		if res.Source == search.SourceGraphDiscovery {
			discovered++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n\nผลการค้นหา: %s", method)
	fmt.Fprintf(&b, "\nอ้างอิงจาก %d คดี", len(uniqueCases))
	if len(typeOrder) > 0 {
		fmt.Fprintf(&b, " | ประเภท: %s", strings.Join(typeOrder, ", "))
	}
	if len(judges) > 0 {
		fmt.Fprintf(&b, " | ผู้พิพากษา: %d คน", len(judges))
	}

	var leading []string
	for _, res := range results {
		leading = append(leading, res.DecisionID)
		if len(leading) >= 3 {
			break
		}
	}
	if len(leading) > 0 {
		fmt.Fprintf(&b, "\nคดีที่สำคัญ: %s", strings.Join(leading, ", "))
	}
	if discovered > 0 {
		fmt.Fprintf(&b, "\nคดีที่ค้นพบผ่านกราฟ: %d คดี", discovered)
	}
	return b.String()
}
