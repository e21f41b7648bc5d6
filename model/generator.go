package model

import (
	"context"
	"fmt"

	"retailrag/retry"
	"retailrag/types"
)

// EmbeddingDim is fixed by the embedding model; every stored vector must
// have exactly this length.
const EmbeddingDim = 768

const DefaultBatchSize = 5

// Generator batches texts through an Embedder, retrying each external
// call with exponential backoff. Results keep the input order.
type Generator struct {
	embedder  Embedder
	batchSize int
	dim       int
	policy    retry.Policy
}

func NewGenerator(embedder Embedder, batchSize int, policy retry.Policy) *Generator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Generator{
		embedder:  embedder,
		batchSize: batchSize,
		dim:       EmbeddingDim,
		policy:    policy,
	}
}

// EmbedBatch returns one vector per input text, in input order. Batches
// are issued sequentially so rate-limit backoff stays observable; a batch
// that exhausts its retries aborts the whole call.
func (g *Generator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += g.batchSize {
		end := min(start+g.batchSize, len(texts))
		batch := texts[start:end]

		vecs, err := retry.DoValue(ctx, g.policy, func() ([][]float32, error) {
			return g.embedder.Embed(ctx, batch)
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at %d: %w", start, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("embed batch starting at %d: got %d vectors for %d texts", start, len(vecs), len(batch))
		}
		for _, v := range vecs {
			if len(v) != g.dim {
				return nil, &types.DimensionError{Want: g.dim, Got: len(v)}
			}
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// EmbedQuery embeds a single query text as a one-item batch.
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}
