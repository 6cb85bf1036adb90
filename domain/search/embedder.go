// Package search provides the domain types for hybrid retrieval: query
// embedding, lexical and vector scoring, and rank fusion.
package search

import "context"

// Embedder converts text into fixed-dimension embedding vectors. Equal input
// and model version must produce equal output.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// DefaultDimension is the default embedding dimension, matching
// all-MiniLM-L6-v2 class sentence embedding models.
const DefaultDimension = 384
