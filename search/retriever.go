// Package search implements the query side of the pipeline: embed the
// query, run thresholded similarity search, join product metadata and
// apply the price-band post-filter.
package search

import (
	"context"
	"fmt"

	"retailrag/types"
)

type Store interface {
	SimilaritySearch(ctx context.Context, queryVec []float32, threshold float64, limit int) ([]types.Match, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]types.Product, error)
}

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Options tune one retrieval. Defaults mirror the retail catalog's
// canonical query: a loose similarity floor and a mid-range price band.
type Options struct {
	Threshold float64
	Limit     int
	MinPrice  float64
	MaxPrice  float64
}

func DefaultOptions() Options {
	return Options{
		Threshold: 0.1,
		Limit:     25,
		MinPrice:  25,
		MaxPrice:  100,
	}
}

type Retriever struct {
	store    Store
	embedder QueryEmbedder
}

func NewRetriever(store Store, embedder QueryEmbedder) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
	}
}

// Retrieve returns matched products ordered by descending similarity.
// An empty post-filtered result is reported as *types.NoMatchesError,
// the expected "broaden your query" outcome.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts Options) ([]types.MatchedProduct, error) {
	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.store.SimilaritySearch(ctx, queryVec, opts.Threshold, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(matches) == 0 {
		return nil, &types.NoMatchesError{Query: query}
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ProductID
	}
	products, err := r.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("join product metadata: %w", err)
	}
	byID := make(map[string]types.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	// Iterate matches, not products, to keep the score ordering.
	var out []types.MatchedProduct
	for _, m := range matches {
		p, ok := byID[m.ProductID]
		if !ok {
			continue
		}
		if p.ListPrice < opts.MinPrice || p.ListPrice > opts.MaxPrice {
			continue
		}
		out = append(out, types.MatchedProduct{Product: p, Similarity: m.Similarity})
	}
	if len(out) == 0 {
		return nil, &types.NoMatchesError{Query: query}
	}
	return out, nil
}
