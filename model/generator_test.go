package model

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"retailrag/retry"
	"retailrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	batchSizes []int
	failures   int
	calls      int
	dim        int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("service unavailable")
	}
	f.batchSizes = append(f.batchSizes, len(texts))
	dim := f.dim
	if dim == 0 {
		dim = EmbeddingDim
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dim)
		// Tag each vector with a fingerprint of its input so order can
		// be asserted end to end.
		vec[0] = float32(len(text))
		out[i] = vec
	}
	return out, nil
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 10, BaseDelay: time.Microsecond, Factor: 2}
}

func TestEmbedBatchPartitionsInput(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := NewGenerator(emb, 5, fastPolicy())

	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}
	vecs, err := gen.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vecs, 12)
	assert.Equal(t, []int{5, 5, 2}, emb.batchSizes)
	assert.Equal(t, 3, emb.calls)
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := NewGenerator(emb, 3, fastPolicy())

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff", "ggggggg"}
	vecs, err := gen.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vecs[i][0], "vector %d should match input %d", i, i)
	}
}

func TestEmbedBatchRetriesTransientFailures(t *testing.T) {
	emb := &fakeEmbedder{failures: 3}
	gen := NewGenerator(emb, 5, fastPolicy())

	vecs, err := gen.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 4, emb.calls)
}

func TestEmbedBatchExhaustsRetries(t *testing.T) {
	emb := &fakeEmbedder{failures: 100}
	gen := NewGenerator(emb, 5, fastPolicy())

	_, err := gen.EmbedBatch(context.Background(), []string{"one"})
	require.Error(t, err)

	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 10, exhausted.Attempts)
	assert.Equal(t, 10, emb.calls)
}

func TestEmbedBatchRejectsWrongDimension(t *testing.T) {
	emb := &fakeEmbedder{dim: 512}
	gen := NewGenerator(emb, 5, fastPolicy())

	_, err := gen.EmbedBatch(context.Background(), []string{"one"})
	require.Error(t, err)

	var dimErr *types.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, EmbeddingDim, dimErr.Want)
	assert.Equal(t, 512, dimErr.Got)
}

func TestEmbedQuerySingleItemBatch(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := NewGenerator(emb, 5, fastPolicy())

	vec, err := gen.EmbedQuery(context.Background(), "happy cat")
	require.NoError(t, err)
	assert.Len(t, vec, EmbeddingDim)
	assert.Equal(t, []int{1}, emb.batchSizes)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := NewGenerator(emb, 5, fastPolicy())

	vecs, err := gen.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Zero(t, emb.calls)
}
