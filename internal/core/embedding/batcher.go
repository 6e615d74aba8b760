package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/orgsearch-io/orgsearch/internal/core"
)

// DefaultBatchSize keeps embedding requests under typical provider limits.
const DefaultBatchSize = 16

// Batcher wraps an EmbeddingProvider with batching and dimension
// reconciliation so callers always receive vectors of the index dimension.
type Batcher struct {
	provider  core.EmbeddingProvider
	batchSize int
	targetDim int
}

func NewBatcher(provider core.EmbeddingProvider, targetDim int) *Batcher {
	return &Batcher{
		provider:  provider,
		batchSize: DefaultBatchSize,
		targetDim: targetDim,
	}
}

// EmbedAll embeds texts in order, batch by batch. The result always has one
// vector of targetDim per input text.
func (b *Batcher) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vectors, err := b.provider.EmbedTexts(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), len(batch))
		}
		for _, v := range vectors {
			out = append(out, Reconcile(v, b.targetDim))
		}
	}
	return out, nil
}

// EmbedQuery embeds a single query string. A blank query short-circuits to a
// zero vector without a provider call, so an empty lexical-only search does
// not burn an embedding request.
func (b *Batcher) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, b.targetDim), nil
	}
	vectors, err := b.provider.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding provider returned %d vectors for 1 text", len(vectors))
	}
	return Reconcile(vectors[0], b.targetDim), nil
}

// Reconcile forces a vector to dim by truncating or zero-padding. Vectors
// already at dim are returned as-is.
func Reconcile(v []float32, dim int) []float32 {
	switch {
	case len(v) == dim:
		return v
	case len(v) > dim:
		return v[:dim]
	default:
		out := make([]float32, dim)
		copy(out, v)
		return out
	}
}
