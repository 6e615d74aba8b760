package retrieval

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/core/embedding"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

const (
	DefaultK    = 10
	DefaultTopN = 3
	// DefaultAlpha weights the vector side of the combined score.
	DefaultAlpha = 0.5
)

// QueryRequest is one hybrid search invocation. Zero values take the
// documented defaults; MinScore nil means no combined-score filter.
type QueryRequest struct {
	Text       string
	Alpha      *float64
	KVector    int
	KLexical   int
	TopN       int
	MinScore   *float64
	IndexName  string
	EmbedModel string
	EmbedDim   int
}

// Engine runs hybrid retrieval: the vector and lexical queries go out
// concurrently, their results are fused, filtered and truncated.
type Engine struct {
	embedder core.EmbeddingProvider
	index    core.SearchIndex
	embedDim int
}

func NewEngine(embedder core.EmbeddingProvider, index core.SearchIndex, embedDim int) *Engine {
	return &Engine{embedder: embedder, index: index, embedDim: embedDim}
}

// Query executes one hybrid search.
func (e *Engine) Query(ctx context.Context, req QueryRequest) ([]models.QueryHit, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("query text is empty")
	}

	alpha := DefaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	kVec := req.KVector
	if kVec <= 0 {
		kVec = DefaultK
	}
	kLex := req.KLexical
	if kLex <= 0 {
		kLex = DefaultK
	}
	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	dim := req.EmbedDim
	if dim <= 0 {
		dim = e.embedDim
	}
	embedder := e.embedder.WithModel(req.EmbedModel)
	batcher := embedding.NewBatcher(embedder, dim)

	vector, err := batcher.EmbedQuery(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	index := e.index.WithIndex(req.IndexName)
	selectFields := models.SelectFields()

	var vecHits, lexHits []models.IndexHit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := index.VectorTopK(gctx, vector, kVec, selectFields)
		if err != nil {
			return fmt.Errorf("vector search: %w", err)
		}
		vecHits = hits
		return nil
	})
	g.Go(func() error {
		hits, err := index.LexicalTopK(gctx, req.Text, kLex, selectFields)
		if err != nil {
			return fmt.Errorf("lexical search: %w", err)
		}
		lexHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := Fuse(vecHits, lexHits, alpha)

	if req.MinScore != nil {
		filtered := fused[:0]
		for _, hit := range fused {
			if hit.CombinedScore >= *req.MinScore {
				filtered = append(filtered, hit)
			}
		}
		fused = filtered
	}

	if len(fused) > topN {
		fused = fused[:topN]
	}
	return fused, nil
}
