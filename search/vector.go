package search

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kittipos/lexgraph/store"
)

// Embedder turns texts into vectors. Satisfied by llm.Provider.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorSearcher supplies similarity candidates for a free-text query.
type VectorSearcher interface {
	Similar(ctx context.Context, query string, k int) ([]CaseResult, error)
}

// VectorEngine is the default VectorSearcher: query embeddings from an
// Embedder, nearest neighbors from the store's sqlite-vec index.
type VectorEngine struct {
	store    *store.Store
	embedder Embedder
}

// NewVectorEngine wires an embedder to the embedding index.
func NewVectorEngine(s *store.Store, embedder Embedder) *VectorEngine {
	return &VectorEngine{store: s, embedder: embedder}
}

// Similar embeds the query and returns the k nearest cases, tagged as
// vector results.
func (v *VectorEngine) Similar(ctx context.Context, query string, k int) ([]CaseResult, error) {
	vectors, err := v.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	hits, err := v.store.VectorSearch(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]CaseResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, resultFromRecord(&hit.Record, hit.Similarity, SourceVector))
	}
	return results, nil
}

// indexConcurrency bounds parallel embedding calls during indexing.
const indexConcurrency = 4

// IndexCases embeds every case document and stores the vectors. Cases
// without text are skipped. Embedding runs concurrently per case; the
// first failure cancels the rest.
func (v *VectorEngine) IndexCases(ctx context.Context, documents map[string]string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(indexConcurrency)

	indexed := 0
	for caseID, text := range documents {
		if text == "" {
			continue
		}
		indexed++
		g.Go(func() error {
			vectors, err := v.embedder.Embed(ctx, []string{text})
			if err != nil {
				return fmt.Errorf("embedding case %s: %w", caseID, err)
			}
			if len(vectors) == 0 {
				return fmt.Errorf("embedder returned no vector for case %s", caseID)
			}
			return v.store.UpsertCaseEmbedding(ctx, caseID, vectors[0])
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("search: case embeddings indexed", "cases", indexed)
	return nil
}
