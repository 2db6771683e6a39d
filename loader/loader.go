// Package loader ingests the case corpus: JSON case files, XLSX case
// registries, and PDF full-text attachments. Loading is tolerant, a
// malformed file is logged and skipped, never fatal for the batch.
package loader

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kittipos/lexgraph/legal"
)

// defaultTitle stands in for cases without one.
const defaultTitle = "ไม่มีชื่อ"

// Loader reads case records from disk and fills in derived fields.
type Loader struct {
	vocab *legal.Vocabulary
}

// New returns a loader using the vocabulary for keyword extraction.
func New(vocab *legal.Vocabulary) *Loader {
	return &Loader{vocab: vocab}
}

// LoadDir reads every .json and .xlsx file in the directory and returns
// the combined corpus. Files that fail to parse are skipped with a
// warning. Records without any text are dropped.
func (l *Loader) LoadDir(dir string) ([]legal.CaseRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}

	var records []legal.CaseRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var (
			loaded []legal.CaseRecord
			ferr   error
		)
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json":
			loaded, ferr = l.loadJSONFile(path)
		case ".xlsx":
			loaded, ferr = l.LoadXLSX(path)
		default:
			continue
		}
		if ferr != nil {
			slog.Warn("loader: skipping file", "file", entry.Name(), "error", ferr)
			continue
		}
		records = append(records, loaded...)
	}

	slog.Info("loader: corpus loaded", "dir", dir, "cases", len(records))
	return records, nil
}

// loadJSONFile reads one case file holding either a single record
// object or an array of records.
func (l *Loader) loadJSONFile(path string) ([]legal.CaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var entries []legal.CaseRecord
	if err := json.Unmarshal(data, &entries); err != nil {
		var single legal.CaseRecord
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		entries = []legal.CaseRecord{single}
	}

	var records []legal.CaseRecord
	for i := range entries {
		rec := entries[i]
		if rec.Text() == "" {
			slog.Warn("loader: skipping record without text",
				"file", filepath.Base(path), "decision_id", rec.DecisionID)
			continue
		}
		l.finish(&rec, filepath.Base(path))
		records = append(records, rec)
	}
	return records, nil
}

// finish fills derived fields on a freshly loaded record.
func (l *Loader) finish(rec *legal.CaseRecord, source string) {
	rec.SourceFile = source
	if rec.Title == "" {
		rec.Title = defaultTitle
	}
	if rec.CaseType == "" {
		rec.CaseType = legal.DetectCaseType(rec.Text(), rec.Title)
	}
	if len(rec.Keywords) == 0 {
		rec.Keywords = l.vocab.ExtractKeywords(rec.Text())
	}
	for i, judge := range rec.Judges {
		rec.Judges[i] = strings.TrimSpace(judge)
	}
}
