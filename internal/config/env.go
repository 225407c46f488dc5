package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix for environment overrides (e.g. WONDERLAND_HOST).
const EnvPrefix = "WONDERLAND"

// envOverrides lists the settings that can come from the environment. Unset variables leave
// the file/default value in place. Only Port carries an envconfig name, so it alone also
// honors the bare PORT variable used by hosting platforms.
type envOverrides struct {
	Port                   int    `envconfig:"PORT"`
	Host                   string `split_words:"true"`
	IndexPath              string `split_words:"true"`
	EmbeddingProvider      string `split_words:"true"`
	EmbeddingModelPath     string `split_words:"true"`
	EmbeddingTokenizerPath string `split_words:"true"`
	OllamaURL              string `split_words:"true"`
	Debug                  *bool
}

// ApplyEnv overlays environment variables on cfg. WONDERLAND_PORT takes precedence over PORT.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if env.Port < 0 || env.Port > 65535 {
		return fmt.Errorf("invalid port %d", env.Port)
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.Host != "" {
		cfg.Server.Host = env.Host
	}
	if env.IndexPath != "" {
		cfg.Index.Path = env.IndexPath
	}
	if env.EmbeddingProvider != "" {
		cfg.Embedding.Provider = env.EmbeddingProvider
	}
	if env.EmbeddingModelPath != "" {
		cfg.Embedding.ModelPath = env.EmbeddingModelPath
	}
	if env.EmbeddingTokenizerPath != "" {
		cfg.Embedding.TokenizerPath = env.EmbeddingTokenizerPath
	}
	if env.OllamaURL != "" {
		cfg.Embedding.OllamaURL = env.OllamaURL
	}
	if env.Debug != nil {
		cfg.Debug = *env.Debug
	}
	return nil
}
