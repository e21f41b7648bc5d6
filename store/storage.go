package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"retailrag/model"
	"retailrag/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// HNSW and IVFFlat tuning for the embedding column. Both indexes are
// rebuilt from scratch on every ingestion run.
const (
	hnswM              = 24
	hnswEfConstruction = 100
	ivfflatLists       = 100
)

type DBStorer interface {
	Rebuild(ctx context.Context, products []types.Product) error
	LoadChunks(ctx context.Context, chunks []types.Chunk) error
	BuildIndexes(ctx context.Context) error
	SimilaritySearch(ctx context.Context, queryVec []float32, threshold float64, limit int) ([]types.Match, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]types.Product, error)
}

type Config struct {
	Host        string
	Port        int
	User        string
	Database    string
	SSLMode     string
	Credentials CredentialProvider
}

func (c Config) connString() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s", c.Host, c.Port, c.User, c.Database, sslmode)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, cfg Config) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.connString())
	if err != nil {
		return nil, err
	}
	if cfg.Credentials != nil {
		poolCfg.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
			token, err := cfg.Credentials.Token(ctx)
			if err != nil {
				return fmt.Errorf("acquire db credentials: %w", err)
			}
			cc.Password = token
			return nil
		}
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// Rebuild drops and recreates the catalog table, then bulk-loads the
// given products. The CASCADE also removes the dependent chunk table, so
// LoadChunks must run in the same ingestion pass.
func (p *PostgresStore) Rebuild(ctx context.Context, products []types.Product) error {
	if _, err := p.pool.Exec(ctx, "DROP TABLE IF EXISTS products CASCADE"); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE products(
			product_id VARCHAR(1024) PRIMARY KEY,
			product_name TEXT,
			description TEXT,
			list_price NUMERIC
		)`)
	if err != nil {
		return err
	}

	_, err = p.pool.CopyFrom(
		ctx,
		pgx.Identifier{"products"},
		[]string{"product_id", "product_name", "description", "list_price"},
		pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
			pr := products[i]
			return []any{pr.ProductID, pr.ProductName, pr.Description, pr.ListPrice}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("bulk load products: %w", err)
	}
	return nil
}

// LoadChunks recreates the embedding table and bulk-inserts the chunk
// rows. Every chunk must reference a product loaded by Rebuild.
func (p *PostgresStore) LoadChunks(ctx context.Context, chunks []types.Chunk) error {
	if _, err := p.pool.Exec(ctx, "DROP TABLE IF EXISTS product_embeddings"); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE product_embeddings(
			id UUID PRIMARY KEY,
			product_id VARCHAR(1024) NOT NULL REFERENCES products(product_id),
			position INT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d)
		)`, model.EmbeddingDim))
	if err != nil {
		return err
	}

	_, err = p.pool.CopyFrom(
		ctx,
		pgx.Identifier{"product_embeddings"},
		[]string{"id", "product_id", "position", "content", "embedding"},
		pgx.CopyFromSlice(len(chunks), func(i int) ([]any, error) {
			c := chunks[i]
			return []any{c.ID, c.ProductID, c.Index, c.Content, pgvector.NewVector(c.Embedding)}, nil
		}),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return &types.IntegrityError{Detail: pgErr.Detail, Err: err}
		}
		return fmt.Errorf("bulk load chunks: %w", err)
	}
	return nil
}

// BuildIndexes creates the two ANN index structures over the embedding
// column. Must run after all rows are loaded, never concurrently with
// loading.
func (p *PostgresStore) BuildIndexes(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE INDEX ON product_embeddings
		  USING hnsw(embedding vector_cosine_ops)
		  WITH (m = %d, ef_construction = %d)`, hnswM, hnswEfConstruction))
	if err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}
	_, err = p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE INDEX ON product_embeddings
		  USING ivfflat(embedding vector_cosine_ops)
		  WITH (lists = %d)`, ivfflatLists))
	if err != nil {
		return fmt.Errorf("create ivfflat index: %w", err)
	}
	return nil
}

// SimilaritySearch scores every chunk with cosine similarity, keeps rows
// strictly above the threshold and collapses them to one row per product
// (best chunk wins). Ties break on product_id so ordering is
// deterministic.
func (p *PostgresStore) SimilaritySearch(ctx context.Context, queryVec []float32, threshold float64, limit int) ([]types.Match, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	query := `
		SELECT product_id, MAX(1 - (embedding <=> $1)) AS similarity
		FROM product_embeddings
		WHERE 1 - (embedding <=> $1) > $2
		GROUP BY product_id
		ORDER BY similarity DESC, product_id
		LIMIT $3`
	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(queryVec), threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		var m types.Match
		if err := rows.Scan(&m.ProductID, &m.Similarity); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ProductsByIDs fetches display metadata for the matched products.
func (p *PostgresStore) ProductsByIDs(ctx context.Context, ids []string) ([]types.Product, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT product_id, product_name, description, list_price
		FROM products
		WHERE product_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []types.Product
	for rows.Next() {
		var pr types.Product
		if err := rows.Scan(&pr.ProductID, &pr.ProductName, &pr.Description, &pr.ListPrice); err != nil {
			return nil, err
		}
		products = append(products, pr)
	}
	return products, rows.Err()
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
