package vectordb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// File names inside an index directory.
const (
	ManifestFile = "manifest.yaml"
	PassagesFile = "passages.db"
	// IndexBase is the base path handed to VectorIndex.Save/Load; FAISS adds .faiss and .idmap.
	IndexBase = "index"
)

// Manifest describes how an index directory was built. The server refuses to load an index
// whose model or dimensions differ from the configured embedder.
type Manifest struct {
	Model         string    `yaml:"model"`
	Dimensions    int       `yaml:"dimensions"`
	IndexType     string    `yaml:"index_type"`
	PassageCount  int       `yaml:"passage_count"`
	QueryPrefix   string    `yaml:"query_prefix"`
	PassagePrefix string    `yaml:"passage_prefix"`
	ChunkSize     int       `yaml:"chunk_size"`
	ChunkOverlap  int       `yaml:"chunk_overlap"`
	Source        string    `yaml:"source"`
	SourceID      string    `yaml:"source_id,omitempty"`
	BuiltAt       time.Time `yaml:"built_at"`
}

// Validate checks the fields Open relies on.
func (m *Manifest) Validate() error {
	if m.Dimensions <= 0 {
		return fmt.Errorf("manifest dimensions must be positive, got %d", m.Dimensions)
	}
	if m.IndexType == "" {
		return fmt.Errorf("manifest index_type is required")
	}
	if m.PassageCount < 0 {
		return fmt.Errorf("manifest passage_count must not be negative")
	}
	return nil
}

// ReadManifest reads dir/manifest.yaml.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteManifest writes m to dir/manifest.yaml.
func WriteManifest(dir string, m *Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
