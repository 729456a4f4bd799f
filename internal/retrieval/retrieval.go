// Package retrieval implements the Hybrid Retriever: it runs a
// lexical fuzzy stage and then a semantic vector stage, one after the
// other rather than concurrently, fuses
// their ranked lists, optionally reranks with contextual features,
// and caches results by query text.
package retrieval

import (
	"context"
	"sync"
	"time"

	"github.com/codenav/navcore/internal/embedder"
	"github.com/codenav/navcore/internal/vectorstore"
)

// FusionStrategy selects how the lexical and semantic stages combine.
type FusionStrategy string

const (
	FusionReciprocalRank FusionStrategy = "rrf"
	FusionWeightedScore  FusionStrategy = "weighted"
	FusionMaxScore       FusionStrategy = "max"
	FusionFuzzyOnly      FusionStrategy = "fuzzy_only"
	FusionSemanticOnly   FusionStrategy = "semantic_only"
)

// Options configures a Retriever.
type Options struct {
	MinQueryLength    int
	CacheSize         int
	CandidatePoolSize int
	FinalResultCount  int
	RRFK              int
	FuzzyWeight       float32 // alpha for FusionWeightedScore
	Fusion            FusionStrategy
	Rerank            bool
}

// DefaultOptions returns the pipeline's documented defaults.
func DefaultOptions() Options {
	return Options{
		MinQueryLength:    2,
		CacheSize:         256,
		CandidatePoolSize: 50,
		FinalResultCount:  10,
		RRFK:              60,
		FuzzyWeight:       0.5,
		Fusion:            FusionReciprocalRank,
		Rerank:            true,
	}
}

// Result is one ranked chunk in a SearchResults response.
type Result struct {
	Chunk vectorstore.Record `json:"chunk"`
	Score float32            `json:"score"`
}

// SearchResults is the Hybrid Retriever's always-well-formed response.
type SearchResults struct {
	Query     string           `json:"query"`
	QueryID   string           `json:"query_id"`
	Results   []Result         `json:"results"`
	TimingsMs map[string]int64 `json:"timings_ms"`
	Cached    bool             `json:"cached"`
	Degraded  []string         `json:"degraded,omitempty"`
}

// Retriever wires the lexical index, vector store, and embedder
// together behind the pipeline described in Retrieve.
type Retriever struct {
	opts      Options
	lexical   *lexicalIndex
	store     *vectorstore.Store
	embedder  embedder.Provider
	resultCache *cache

	mu sync.RWMutex
}

// New builds a Retriever over the given record corpus, store, and
// embedding provider.
func New(opts Options, records []vectorstore.Record, store *vectorstore.Store, provider embedder.Provider) (*Retriever, error) {
	lex, err := newLexicalIndex(records)
	if err != nil {
		return nil, err
	}
	return &Retriever{
		opts:        opts,
		lexical:     lex,
		store:       store,
		embedder:    provider,
		resultCache: newCache(opts.CacheSize),
	}, nil
}

// Close releases the lexical index and embedder resources.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	if r.lexical != nil {
		err = r.lexical.Close()
	}
	if r.embedder != nil {
		if closeErr := r.embedder.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// Reindex replaces the lexical corpus, e.g. after a rebuild.
func (r *Retriever) Reindex(records []vectorstore.Record) error {
	lex, err := newLexicalIndex(records)
	if err != nil {
		return err
	}
	r.mu.Lock()
	old := r.lexical
	r.lexical = lex
	r.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Retrieve runs the seven-step hybrid pipeline for query and always
// returns a well-formed SearchResults, degrading gracefully on stage
// failures.
func (r *Retriever) Retrieve(ctx context.Context, query string) SearchResults {
	out := SearchResults{Query: query, TimingsMs: map[string]int64{}}

	if len(query) < r.opts.MinQueryLength {
		return out
	}

	if cached, ok := r.resultCache.Get(query); ok {
		cached.Cached = true
		return cached
	}

	r.mu.RLock()
	lexical := r.lexical
	store := r.store
	provider := r.embedder
	r.mu.RUnlock()

	var fuzzyHits, semanticHits []stageHit

	if r.opts.Fusion != FusionSemanticOnly {
		start := time.Now()
		hits, err := lexical.Search(query, r.opts.CandidatePoolSize)
		out.TimingsMs["fuzzy"] = time.Since(start).Milliseconds()
		if err != nil {
			out.Degraded = append(out.Degraded, "fuzzy: "+err.Error())
		} else {
			fuzzyHits = hits
		}
	}

	if r.opts.Fusion != FusionFuzzyOnly && store != nil && provider != nil {
		start := time.Now()
		hits, err := r.semanticSearch(ctx, query)
		out.TimingsMs["semantic"] = time.Since(start).Milliseconds()
		if err != nil {
			out.Degraded = append(out.Degraded, "semantic: "+err.Error())
		} else {
			semanticHits = hits
		}
	}

	start := time.Now()
	fused := fuse(r.opts, fuzzyHits, semanticHits)
	out.TimingsMs["fusion"] = time.Since(start).Milliseconds()

	if r.opts.Rerank {
		start = time.Now()
		fused = rerank(query, lexical.recordOf, fused)
		out.TimingsMs["rerank"] = time.Since(start).Milliseconds()
	}

	if len(fused) > r.opts.FinalResultCount {
		fused = fused[:r.opts.FinalResultCount]
	}

	out.QueryID = newQueryID()
	out.Results = make([]Result, 0, len(fused))
	for _, f := range fused {
		if rec, ok := lexical.recordOf(f.id); ok {
			out.Results = append(out.Results, Result{Chunk: rec, Score: f.score})
		}
	}

	r.resultCache.Set(query, out)
	return out
}

func (r *Retriever) semanticSearch(ctx context.Context, query string) ([]stageHit, error) {
	vecs, err := r.embedder.Embed(ctx, []string{query}, embedder.ModeQuery)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	results, err := r.store.Query(ctx, vecs[0], r.opts.CandidatePoolSize)
	if err != nil {
		return nil, err
	}
	hits := make([]stageHit, 0, len(results))
	for _, res := range results {
		hits = append(hits, stageHit{id: res.Record.ID, score: res.Score})
	}
	return hits, nil
}
