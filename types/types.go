package types

import (
	"github.com/google/uuid"
)

// Product is one row of the retail catalog. Loaded wholesale from the
// dataset on each ingestion run and never mutated afterwards.
type Product struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Description string  `json:"description"`
	ListPrice   float64 `json:"list_price"`
}

// Chunk is a bounded slice of a product description. Embedding is filled
// in by the embedding generator before the chunk reaches the store.
type Chunk struct {
	ID        uuid.UUID
	ProductID string
	Index     int
	Content   string
	Embedding []float32
}

// Match is a raw similarity-search hit: one row per product, scored by
// its best-matching chunk.
type Match struct {
	ProductID  string
	Similarity float64
}

// MatchedProduct joins a similarity hit with the product's display fields.
type MatchedProduct struct {
	Product
	Similarity float64 `json:"similarity"`
}

type ChatbotResponse struct {
	Answer string `json:"answer"`
}
