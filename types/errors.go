package types

import "fmt"

// NoMatchesError signals that similarity search (after post-filtering)
// came back empty. It is an expected outcome, not a bug: the caller
// should broaden the query or relax the filters.
type NoMatchesError struct {
	Query string
}

func (e *NoMatchesError) Error() string {
	return fmt.Sprintf("did not find any results for %q, adjust the query parameters", e.Query)
}

// DimensionError reports an embedding vector whose length does not match
// the configured dimension. Fatal for the whole ingestion run.
type DimensionError struct {
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// IntegrityError reports a chunk referencing a product that is missing
// from the catalog table. Indicates an ordering bug in ingestion.
type IntegrityError struct {
	Detail string
	Err    error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("chunk references a missing product: %s", e.Detail)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
