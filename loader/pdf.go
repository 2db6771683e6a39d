package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kittipos/lexgraph/legal"
)

// ExtractPDFText returns the plain text of every readable page,
// concatenated. Pages that fail to extract are skipped.
func ExtractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text in %s", filepath.Base(path))
	}
	return b.String(), nil
}

// AttachPDFTexts fills in missing full text from PDF files in dir. A
// case's PDF is named after its decision id with "/" replaced by "-",
// e.g. "123-2566.pdf". Missing or unreadable PDFs leave the record
// unchanged.
func AttachPDFTexts(records []legal.CaseRecord, dir string) {
	attached := 0
	for i := range records {
		rec := &records[i]
		if rec.FullText != "" || rec.DecisionID == "" {
			continue
		}
		name := strings.ReplaceAll(rec.DecisionID, "/", "-") + ".pdf"
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		text, err := ExtractPDFText(path)
		if err != nil {
			slog.Warn("loader: pdf extraction failed", "file", name, "error", err)
			continue
		}
		rec.FullText = legal.CleanText(text)
		attached++
	}
	if attached > 0 {
		slog.Info("loader: pdf texts attached", "cases", attached)
	}
}
