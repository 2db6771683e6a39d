// Package lexgraph is a legal-case recommendation and explanation
// engine. It combines vector similarity with a knowledge graph over
// cases, judges, legal concepts, case types, and statute sections, and
// routes each query to the cheapest strategy that can answer it.
package lexgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/kittipos/lexgraph/compose"
	"github.com/kittipos/lexgraph/graph"
	"github.com/kittipos/lexgraph/legal"
	"github.com/kittipos/lexgraph/llm"
	"github.com/kittipos/lexgraph/loader"
	"github.com/kittipos/lexgraph/search"
	"github.com/kittipos/lexgraph/store"
)

// Engine is the main entry point. It serves queries from an immutable
// snapshot bundle; rebuilds assemble a new bundle and swap the pointer,
// so readers never block.
type Engine struct {
	cfg      Config
	store    *store.Store
	vocab    *legal.Vocabulary
	ld       *loader.Loader
	composer *compose.Composer
	vector   *search.VectorEngine

	bundle atomic.Pointer[bundle]
	group  singleflight.Group
	closed atomic.Bool
}

// bundle is everything derived from one snapshot. Replaced as a whole.
type bundle struct {
	snap      *graph.Snapshot
	retriever *search.Retriever
	router    *search.Router
}

// New creates an engine from configuration. Providers are optional:
// without an embedding provider the router skips vector fallback,
// without a chat provider Ask is unavailable.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	vocab := legal.DefaultVocabulary()
	if cfg.VocabPath != "" {
		v, err := legal.LoadVocabulary(cfg.VocabPath)
		if err != nil {
			return nil, fmt.Errorf("loading vocabulary: %w", err)
		}
		vocab = v
	}

	s, err := store.New(cfg.resolveDBPath(), cfg.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	e := &Engine{
		cfg:   cfg,
		store: s,
		vocab: vocab,
		ld:    loader.New(vocab),
	}

	if cfg.Chat.Provider != "" {
		chat, err := llm.NewProvider(llm.Config{
			Provider: cfg.Chat.Provider,
			Model:    cfg.Chat.Model,
			BaseURL:  cfg.Chat.BaseURL,
			APIKey:   cfg.Chat.APIKey,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating chat provider: %w", err)
		}
		e.composer = compose.NewComposer(chat, cfg.Chat.Model)
	}

	if cfg.Embedding.Provider != "" {
		embed, err := llm.NewProvider(llm.Config{
			Provider: cfg.Embedding.Provider,
			Model:    cfg.Embedding.Model,
			BaseURL:  cfg.Embedding.BaseURL,
			APIKey:   cfg.Embedding.APIKey,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating embedding provider: %w", err)
		}
		e.vector = search.NewVectorEngine(s, embed)
	}

	return e, nil
}

// Initialize makes the engine ready to serve: it loads the persisted
// snapshot, or builds one from the corpus when none exists. Safe to
// call concurrently; only one build runs.
func (e *Engine) Initialize(ctx context.Context) error {
	_, err := e.ready(ctx)
	return err
}

// ready returns the current bundle, assembling it on first use.
func (e *Engine) ready(ctx context.Context) (*bundle, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if b := e.bundle.Load(); b != nil {
		return b, nil
	}

	v, err, _ := e.group.Do("init", func() (any, error) {
		if b := e.bundle.Load(); b != nil {
			return b, nil
		}
		snap, err := e.store.LoadSnapshot(ctx)
		if errors.Is(err, store.ErrNoSnapshot) {
			slog.Info("lexgraph: no persisted snapshot, building from corpus")
			return e.rebuild(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		b := e.newBundle(snap)
		e.bundle.Store(b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*bundle), nil
}

// Rebuild reloads the corpus, rebuilds the graph, persists it, and
// swaps the serving bundle. Concurrent rebuild calls share one build.
func (e *Engine) Rebuild(ctx context.Context) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	_, err, _ := e.group.Do("rebuild", func() (any, error) {
		return e.rebuild(ctx)
	})
	return err
}

// rebuild does the actual corpus load, graph build, and persist.
func (e *Engine) rebuild(ctx context.Context) (*bundle, error) {
	records, err := e.ld.LoadDir(e.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	if e.cfg.PDFDir != "" {
		loader.AttachPDFTexts(records, e.cfg.PDFDir)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no case records in %s", ErrEmptyCorpus, e.cfg.DataDir)
	}

	builder := graph.NewBuilder(e.vocab)
	builder.Resolution = e.cfg.CommunityResolution
	builder.MinCommunitySize = e.cfg.MinCommunitySize
	builder.SimilarityThreshold = e.cfg.SimilarityThreshold
	builder.MaxFeatures = e.cfg.MaxFeatures
	snap := builder.Build(records)

	if err := e.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("persisting snapshot: %w", err)
	}

	// Embedding indexing is best effort: the router degrades to exact
	// and graph strategies when the vector index is empty.
	if e.vector != nil {
		if err := e.vector.IndexCases(ctx, snap.Documents); err != nil {
			slog.Warn("lexgraph: embedding indexing failed", "error", err)
		}
	}

	b := e.newBundle(snap)
	e.bundle.Store(b)
	return b, nil
}

// newBundle wires the per-snapshot engines.
func (e *Engine) newBundle(snap *graph.Snapshot) *bundle {
	exact := search.NewExactEngine(snap.Records())
	retriever := search.NewRetriever(snap, e.vocab)
	retriever.SetMaxDepth(e.cfg.MaxGraphDepth)
	retriever.SetContextWeight(e.cfg.ContextWeight)

	var vs search.VectorSearcher
	if e.vector != nil {
		vs = e.vector
	}
	return &bundle{
		snap:      snap,
		retriever: retriever,
		router:    search.NewRouter(exact, retriever, vs, e.vocab),
	}
}

// Search routes a query through the strategy chain and returns ranked
// results. k <= 0 uses the configured TopK.
func (e *Engine) Search(ctx context.Context, query string, filters search.Filters, k int) ([]search.CaseResult, error) {
	b, err := e.ready(ctx)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = e.cfg.TopK
	}
	return b.router.Search(ctx, query, filters, k)
}

// Ask searches and then drafts a grounded answer with the chat
// provider. Out-of-domain queries get a canned reply without touching
// the index.
func (e *Engine) Ask(ctx context.Context, query string, k int) (string, error) {
	if e.composer == nil {
		return "", ErrChatNotConfigured
	}
	if !compose.IsLegalQuery(query) {
		return compose.NonLegalResponse(), nil
	}
	results, err := e.Search(ctx, query, search.Filters{}, k)
	if err != nil {
		return "", err
	}
	return e.composer.Compose(ctx, query, results, "graphrag")
}

// Recommend returns cases related to a graph entity, ranked by
// propagated relevance.
func (e *Engine) Recommend(ctx context.Context, entity string) ([]search.Recommendation, error) {
	b, err := e.ready(ctx)
	if err != nil {
		return nil, err
	}
	if !b.snap.Graph.HasNode(entity) {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}
	return b.retriever.Recommend(entity), nil
}

// Explain traces why a case relates to a query through the graph.
func (e *Engine) Explain(ctx context.Context, caseID, query string) (search.Explanation, error) {
	b, err := e.ready(ctx)
	if err != nil {
		return search.Explanation{}, err
	}
	return b.retriever.Explain(caseID, query), nil
}

// Stats summarizes the current knowledge graph.
func (e *Engine) Stats(ctx context.Context) (graph.Stats, error) {
	b, err := e.ready(ctx)
	if err != nil {
		return graph.Stats{}, err
	}
	return b.snap.Stats(), nil
}

// Store exposes the underlying store for diagnostic access.
func (e *Engine) Store() *store.Store { return e.store }

// Close shuts the engine down. Subsequent calls error with
// ErrEngineClosed.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	return e.store.Close()
}
