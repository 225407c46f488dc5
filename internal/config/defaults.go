package config

const (
	// DefaultModel is the sentence embedding model the index is built with.
	DefaultModel = "intfloat/multilingual-e5-small"
	// DefaultIndexPath is the index directory, resolved against the working directory.
	DefaultIndexPath = "wonderland_db"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = DefaultIndexPath
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultModel
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "models/multilingual-e5-small.onnx"
	}
	if cfg.Embedding.TokenizerPath == "" {
		cfg.Embedding.TokenizerPath = "models/tokenizer.json"
	}
	if cfg.Embedding.OllamaURL == "" {
		cfg.Embedding.OllamaURL = "http://localhost:11434"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 512
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	// E5 models are trained with these prefixes; an explicit empty prefix is not supported.
	if cfg.Embedding.QueryPrefix == "" {
		cfg.Embedding.QueryPrefix = "query: "
	}
	if cfg.Embedding.PassagePrefix == "" {
		cfg.Embedding.PassagePrefix = "passage: "
	}
	if cfg.Query.DefaultTopK == 0 {
		cfg.Query.DefaultTopK = 3
	}
	if cfg.Query.MaxTopK == 0 {
		cfg.Query.MaxTopK = 50
	}
	if cfg.Query.MaxTopK < cfg.Query.DefaultTopK {
		cfg.Query.MaxTopK = cfg.Query.DefaultTopK
	}
	if cfg.Build.CorpusPath == "" {
		cfg.Build.CorpusPath = "alice_in_wonderland.txt"
	}
	if cfg.Build.ChunkSize == 0 {
		cfg.Build.ChunkSize = 200
	}
	if cfg.Build.ChunkOverlap == 0 {
		cfg.Build.ChunkOverlap = 40
	}
	if cfg.Build.BatchSize == 0 {
		cfg.Build.BatchSize = 32
	}
}
