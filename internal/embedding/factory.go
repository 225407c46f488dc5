package embedding

import (
	"fmt"

	"github.com/hyperjump/wonderland/internal/config"
)

// Provider names accepted in embedding.provider.
const (
	ProviderONNX   = "onnx"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"
)

// NewEmbedder creates the raw embedder selected by cfg.Provider.
func NewEmbedder(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case ProviderONNX, "":
		e, err := NewONNXEmbedder(cfg.ModelPath, cfg.TokenizerPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		return e, nil
	case ProviderOllama:
		e, err := NewOllamaEmbedder(cfg.OllamaURL, cfg.Model, cfg.Dimensions)
		if err != nil {
			return nil, err
		}
		return e, nil
	case ProviderMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (use %q, %q or %q)", cfg.Provider, ProviderONNX, ProviderOllama, ProviderMock)
	}
}

// NewFramedEmbedder creates the embedder selected by cfg and wraps it with the configured
// query and passage prefixes.
func NewFramedEmbedder(cfg *config.EmbeddingConfig) (*Framed, error) {
	base, err := NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	framed, err := NewFramed(base, Framing{QueryPrefix: cfg.QueryPrefix, PassagePrefix: cfg.PassagePrefix})
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	return framed, nil
}
