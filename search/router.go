package search

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kittipos/lexgraph/legal"
)

// routeCaseNumberRe decides whether a query is a docket-number lookup.
var routeCaseNumberRe = regexp.MustCompile(`\d+/\d+`)

// Filters narrow a search to an explicit judge or case type.
type Filters struct {
	CaseType  string `json:"case_type,omitempty"`
	JudgeName string `json:"judge_name,omitempty"`
}

// Router picks a retrieval strategy per query. Precedence is strict:
// docket-number lookup, then judge filters and mentions, then case-type
// filters and keywords, and only then the vector plus graph fallback.
// Exact strategies win outright when they produce hits; a query that
// matches nothing returns an empty list, never an error.
type Router struct {
	exact     *ExactEngine
	retriever *Retriever
	vector    VectorSearcher
	vocab     *legal.Vocabulary
}

// NewRouter wires the three engines together. vector may be nil, in
// which case the fallback step returns no results.
func NewRouter(exact *ExactEngine, retriever *Retriever, vector VectorSearcher, vocab *legal.Vocabulary) *Router {
	return &Router{exact: exact, retriever: retriever, vector: vector, vocab: vocab}
}

// Search routes the query to the most specific strategy that applies.
// Cancellation is honored between the cheap exact steps and the
// expensive vector plus graph fallback.
func (r *Router) Search(ctx context.Context, query string, filters Filters, k int) ([]CaseResult, error) {
	query = strings.TrimSpace(query)
	if k <= 0 {
		k = 5
	}

	if num := routeCaseNumberRe.FindString(query); num != "" {
		if hits := r.exact.ByCaseNumber(num, k); len(hits) > 0 {
			slog.Info("search: routed to case number lookup", "case_number", num, "hits", len(hits))
			return hits, nil
		}
	}

	if filters.JudgeName != "" {
		if hits := r.exact.ByJudge(filters.JudgeName, k); len(hits) > 0 {
			slog.Info("search: routed to judge lookup", "judge", filters.JudgeName, "hits", len(hits))
			return hits, nil
		}
	}
	if m := judgeMentionRe.FindStringSubmatch(query); m != nil {
		if hits := r.exact.ByJudge(m[1], k); len(hits) > 0 {
			slog.Info("search: routed to judge mention", "judge", m[1], "hits", len(hits))
			return hits, nil
		}
	}

	if filters.CaseType != "" {
		if hits := r.exact.ByCaseType(filters.CaseType, k); len(hits) > 0 {
			slog.Info("search: routed to case type filter", "case_type", filters.CaseType, "hits", len(hits))
			return r.mergeWithGraph(ctx, query, hits, k), nil
		}
	}

	if caseType := r.vocab.ExtractCaseType(query); caseType != "" {
		if hits := r.exact.ByCaseType(caseType, k); len(hits) > 0 {
			slog.Info("search: routed to case type keyword", "case_type", caseType, "hits", len(hits))
			return hits, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search abandoned before fallback: %w", err)
	}

	return r.fallback(ctx, query, k)
}

// mergeWithGraph widens an exact case-type result set with graph-enhanced
// vector candidates. Exact hits come first; duplicates are dropped.
func (r *Router) mergeWithGraph(ctx context.Context, query string, hits []CaseResult, k int) []CaseResult {
	enhanced, err := r.fallback(ctx, query, k)
	if err != nil {
		slog.Warn("search: graph widening failed, keeping exact hits", "error", err)
		return hits
	}

	seen := make(map[string]bool, len(hits))
	for _, h := range hits {
		seen[h.DecisionID] = true
	}
	merged := hits
	for _, h := range enhanced {
		if !seen[h.DecisionID] {
			seen[h.DecisionID] = true
			merged = append(merged, h)
		}
	}
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// fallback runs vector similarity search and enhances the candidates
// with graph context. With no vector searcher configured the graph can
// still discover cases from entities mentioned in the query.
func (r *Router) fallback(ctx context.Context, query string, k int) ([]CaseResult, error) {
	var candidates []CaseResult
	if r.vector != nil {
		var err error
		candidates, err = r.vector.Similar(ctx, query, k)
		if err != nil {
			return nil, fmt.Errorf("vector fallback: %w", err)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return r.retriever.Retrieve(query, candidates, k), nil
}
