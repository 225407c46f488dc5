package embedding

import (
	"context"
	"fmt"
)

// Framing is the text convention asymmetric retrieval models use to tell queries from
// the passages they should match.
type Framing struct {
	QueryPrefix   string
	PassagePrefix string
}

// E5Framing is the prefix pair the E5 model family was trained with.
var E5Framing = Framing{QueryPrefix: "query: ", PassagePrefix: "passage: "}

// Query returns text framed as a search query.
func (f Framing) Query(text string) string {
	return f.QueryPrefix + text
}

// Passage returns text framed as a stored passage.
func (f Framing) Passage(text string) string {
	return f.PassagePrefix + text
}

// QueryEmbedder embeds search queries.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// DocumentEmbedder embeds corpus passages.
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Framed applies a Framing before delegating to an Embedder. It satisfies both
// QueryEmbedder and DocumentEmbedder; each call site picks the side it needs.
type Framed struct {
	base    Embedder
	framing Framing
}

// NewFramed wraps base with framing. The two prefixes must differ, otherwise query and
// passage vectors would be indistinguishable.
func NewFramed(base Embedder, framing Framing) (*Framed, error) {
	if base == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if framing.QueryPrefix == framing.PassagePrefix {
		return nil, fmt.Errorf("query and passage prefixes must differ (both %q)", framing.QueryPrefix)
	}
	return &Framed{base: base, framing: framing}, nil
}

// EmbedQuery embeds a single query string with the query prefix.
func (f *Framed) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.base.Embed(ctx, f.framing.Query(text))
}

// EmbedDocuments embeds passages with the passage prefix. Used by the offline build.
func (f *Framed) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	framed := make([]string, len(texts))
	for i, t := range texts {
		framed[i] = f.framing.Passage(t)
	}
	return f.base.EmbedBatch(ctx, framed)
}

// Framing returns the prefixes in use.
func (f *Framed) Framing() Framing {
	return f.framing
}

// Dimensions returns the embedding dimension of the wrapped embedder.
func (f *Framed) Dimensions() int {
	return f.base.Dimensions()
}

// Close closes the wrapped embedder.
func (f *Framed) Close() error {
	return f.base.Close()
}
