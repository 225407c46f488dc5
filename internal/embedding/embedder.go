// Package embedding provides text embedding providers and the query/passage framing used by E5 models.
package embedding

import (
	"context"
	"errors"
)

// ErrEmbedding is wrapped by every provider error so callers can tell embedding failures apart.
var ErrEmbedding = errors.New("embedding failed")

// Embedder produces vector embeddings for text. Implementations embed text verbatim;
// query/passage prefixes are applied by Framed.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
