// Package service orchestrates the ingestion pipeline: load the dataset,
// rebuild the catalog table, chunk descriptions, generate embeddings in
// batches and load them, then build the ANN indexes. The run is strictly
// sequential and fails fatally on the first error; there is no
// checkpoint/resume.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"retailrag/chunker"
	"retailrag/loader/dataset"
	"retailrag/store"
	"retailrag/types"
)

type EmbeddingGenerator interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Service struct {
	logger    *slog.Logger
	store     store.DBStorer
	splitter  *chunker.Splitter
	generator EmbeddingGenerator
}

func New(storer store.DBStorer, splitter *chunker.Splitter, generator EmbeddingGenerator) *Service {
	return &Service{
		logger:    slog.Default(),
		store:     storer,
		splitter:  splitter,
		generator: generator,
	}
}

func (s *Service) Run(ctx context.Context, datasetPath string) error {
	products, err := dataset.Load(datasetPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if len(products) == 0 {
		return fmt.Errorf("dataset %s has no usable rows", datasetPath)
	}
	s.logger.Info("dataset loaded", "products", len(products))

	if err := s.store.Rebuild(ctx, products); err != nil {
		return fmt.Errorf("rebuild catalog: %w", err)
	}
	s.logger.Info("catalog table rebuilt")

	chunks := s.splitAll(products)
	s.logger.Info("descriptions chunked", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.generator.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	s.logger.Info("embeddings generated", "vectors", len(vectors))

	if err := s.store.LoadChunks(ctx, chunks); err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}

	// Indexes are built only after every row is in place so partial data
	// is never indexed.
	if err := s.store.BuildIndexes(ctx); err != nil {
		return fmt.Errorf("build indexes: %w", err)
	}
	s.logger.Info("ingestion complete", "products", len(products), "chunks", len(chunks))
	return nil
}

func (s *Service) splitAll(products []types.Product) []types.Chunk {
	var chunks []types.Chunk
	for _, p := range products {
		chunks = append(chunks, s.splitter.Split(p.ProductID, p.Description)...)
	}
	return chunks
}
