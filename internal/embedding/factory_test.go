package embedding

import (
	"path/filepath"
	"testing"

	"github.com/hyperjump/wonderland/internal/config"
)

func TestNewEmbedder(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = ProviderMock
	e, err := NewEmbedder(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() != cfg.Dimensions {
		t.Errorf("Dimensions=%d, want %d", e.Dimensions(), cfg.Dimensions)
	}

	cfg.Provider = ProviderOllama
	if _, err := NewEmbedder(&cfg); err != nil {
		t.Errorf("ollama: %v", err)
	}

	cfg.Provider = "word2vec"
	if _, err := NewEmbedder(&cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewEmbedder_ONNXRequiresTokenizer(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = ProviderONNX
	cfg.TokenizerPath = filepath.Join(t.TempDir(), "tokenizer.json")
	e, err := NewEmbedder(&cfg)
	if err == nil {
		_ = e.Close()
		t.Fatal("onnx embedder started without a tokenizer.json")
	}
}

func TestNewFramedEmbedder(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.Provider = ProviderMock
	f, err := NewFramedEmbedder(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if f.Framing() != E5Framing {
		t.Errorf("Framing=%+v, want %+v", f.Framing(), E5Framing)
	}

	cfg.PassagePrefix = cfg.QueryPrefix
	if _, err := NewFramedEmbedder(&cfg); err == nil {
		t.Error("expected error for identical prefixes")
	}
}
