package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
index:
  path: "wonderland_db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Index.Path != "wonderland_db" {
		t.Errorf("bare relative index path should stay relative to the working dir, got %s", cfg.Index.Path)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
index:
  path: "./data/wonderland_db"
embedding:
  model_path: "./models/e5.onnx"
  tokenizer_path: "./models/tokenizer.json"
build:
  corpus_path: "./corpus/alice.txt"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "wonderland_db"); cfg.Index.Path != want {
		t.Errorf("index path = %s, want %s", cfg.Index.Path, want)
	}
	if want := filepath.Join(dir, "models", "e5.onnx"); cfg.Embedding.ModelPath != want {
		t.Errorf("model path = %s, want %s", cfg.Embedding.ModelPath, want)
	}
	if want := filepath.Join(dir, "models", "tokenizer.json"); cfg.Embedding.TokenizerPath != want {
		t.Errorf("tokenizer path = %s, want %s", cfg.Embedding.TokenizerPath, want)
	}
	if want := filepath.Join(dir, "corpus", "alice.txt"); cfg.Build.CorpusPath != want {
		t.Errorf("corpus path = %s, want %s", cfg.Build.CorpusPath, want)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("default cors origins: got %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Server.TracingOrDefault() {
		t.Error("tracing should default to true")
	}
	if cfg.Index.Path != "wonderland_db" {
		t.Errorf("default index path: got %s", cfg.Index.Path)
	}
	if cfg.Embedding.Model != DefaultModel || cfg.Embedding.Dimensions != 384 {
		t.Errorf("default embedding: got %+v", cfg.Embedding)
	}
	if cfg.Embedding.QueryPrefix != "query: " || cfg.Embedding.PassagePrefix != "passage: " {
		t.Errorf("default prefixes: got %q / %q", cfg.Embedding.QueryPrefix, cfg.Embedding.PassagePrefix)
	}
	if cfg.Query.DefaultTopK != 3 {
		t.Errorf("default top k: got %d", cfg.Query.DefaultTopK)
	}
	if cfg.Query.MaxTopK != 50 {
		t.Errorf("default max top k: got %d", cfg.Query.MaxTopK)
	}
}

func TestApplyDefaults_MaxTopKNeverBelowDefault(t *testing.T) {
	cfg := &Config{Query: QueryConfig{DefaultTopK: 10, MaxTopK: 5}}
	ApplyDefaults(cfg)
	if cfg.Query.MaxTopK != 10 {
		t.Errorf("max top k = %d, want 10", cfg.Query.MaxTopK)
	}
}

func TestServerConfig_TracingOrDefault(t *testing.T) {
	f := false
	s := &ServerConfig{Tracing: &f}
	if s.TracingOrDefault() {
		t.Error("explicit false should disable tracing")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("WONDERLAND_INDEX_PATH", "/srv/wonderland_db")
	t.Setenv("WONDERLAND_EMBEDDING_PROVIDER", "ollama")
	t.Setenv("WONDERLAND_OLLAMA_URL", "http://ollama:11434")
	t.Setenv("WONDERLAND_EMBEDDING_TOKENIZER_PATH", "/models/tokenizer.json")
	t.Setenv("WONDERLAND_DEBUG", "true")

	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Index.Path != "/srv/wonderland_db" {
		t.Errorf("index path = %s", cfg.Index.Path)
	}
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.OllamaURL != "http://ollama:11434" || cfg.Embedding.TokenizerPath != "/models/tokenizer.json" {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if !cfg.Debug {
		t.Error("debug should be enabled from env")
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("unset host should keep default, got %s", cfg.Server.Host)
	}
}

func TestApplyEnv_PrefixedPortWins(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("WONDERLAND_PORT", "9200")
	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, want 9200", cfg.Server.Port)
	}
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if err := ApplyEnv(Default()); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
	t.Setenv("PORT", "70000")
	if err := ApplyEnv(Default()); err == nil {
		t.Error("expected error for out-of-range PORT")
	}
}
