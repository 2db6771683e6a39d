package loader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kittipos/lexgraph/legal"
)

// LoadXLSX reads a case registry spreadsheet. The first row of each
// sheet is the header; recognized columns are decision_id, title,
// summary, full_text, case_type, judges (comma separated), plaintiff
// and defendant. Unrecognized columns are ignored, rows without a
// decision id or text are skipped.
func (l *Loader) LoadXLSX(path string) ([]legal.CaseRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	var records []legal.CaseRecord
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}

		cols := make(map[string]int, len(rows[0]))
		for i, name := range rows[0] {
			cols[strings.ToLower(strings.TrimSpace(name))] = i
		}
		if _, ok := cols["decision_id"]; !ok {
			slog.Warn("loader: sheet without decision_id column", "file", filepath.Base(path), "sheet", sheet)
			continue
		}

		cell := func(row []string, name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		for _, row := range rows[1:] {
			rec := legal.CaseRecord{
				DecisionID: cell(row, "decision_id"),
				Title:      cell(row, "title"),
				Summary:    cell(row, "summary"),
				FullText:   cell(row, "full_text"),
				CaseType:   cell(row, "case_type"),
			}
			if rec.DecisionID == "" || rec.Text() == "" {
				continue
			}

			if judges := cell(row, "judges"); judges != "" {
				for _, j := range strings.Split(judges, ",") {
					if j = strings.TrimSpace(j); j != "" {
						rec.Judges = append(rec.Judges, j)
					}
				}
			}

			litigants := make(map[string]string)
			if p := cell(row, "plaintiff"); p != "" {
				litigants["โจทก์"] = p
			}
			if d := cell(row, "defendant"); d != "" {
				litigants["จำเลย"] = d
			}
			if len(litigants) > 0 {
				rec.Litigants = litigants
			}

			l.finish(&rec, filepath.Base(path))
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no case rows found in %s", filepath.Base(path))
	}
	return records, nil
}
