package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/wonderland/internal/config"
	"github.com/hyperjump/wonderland/internal/embedding"
	"github.com/hyperjump/wonderland/internal/extract"
	"github.com/hyperjump/wonderland/internal/fileid"
	"github.com/hyperjump/wonderland/internal/vectordb"
)

// ErrEmptyCorpus is returned when the corpus yields no passages.
var ErrEmptyCorpus = errors.New("corpus contains no text")

// Builder turns a corpus file into an index directory.
type Builder struct {
	embedder  *embedding.Framed
	extractor *extract.Extractor
	chunker   *Chunker
	model     string
	indexType string
	batchSize int
	cfg       config.BuildConfig
	logger    *zap.Logger
}

// NewBuilder creates a builder that embeds passages with embedder. cfg supplies the model name,
// index type and chunking settings recorded in the manifest.
func NewBuilder(embedder *embedding.Framed, cfg *config.Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	batch := cfg.Build.BatchSize
	if batch <= 0 {
		batch = 32
	}
	chunker := NewChunker(cfg.Build.ChunkSize, cfg.Build.ChunkOverlap)
	build := cfg.Build
	build.ChunkSize, build.ChunkOverlap = chunker.chunkSize, chunker.chunkOverlap
	return &Builder{
		embedder:  embedder,
		extractor: extract.NewExtractor(),
		chunker:   chunker,
		model:     cfg.Embedding.Model,
		indexType: cfg.Index.Type,
		batchSize: batch,
		cfg:       build,
		logger:    logger,
	}
}

// Build indexes corpusPath into outDir. The index is written to a staging directory next to
// outDir and swapped in only when complete, so outDir always holds either the previous index
// or the new one.
func (b *Builder) Build(ctx context.Context, corpusPath, outDir string) (*vectordb.Manifest, error) {
	start := time.Now()
	sourceID, err := fileid.FileContentID(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", corpusPath, err)
	}
	text, err := b.extractor.Extract(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", corpusPath, err)
	}
	passages := b.chunker.Chunk(StripGutenberg(text))
	if len(passages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, corpusPath)
	}
	b.logger.Info("corpus chunked",
		zap.String("corpus", corpusPath),
		zap.Int("passages", len(passages)),
		zap.Int("chunk_size", b.cfg.ChunkSize),
		zap.Int("chunk_overlap", b.cfg.ChunkOverlap))

	outDir = filepath.Clean(outDir)
	if err := os.MkdirAll(filepath.Dir(outDir), 0755); err != nil {
		return nil, fmt.Errorf("create parent of %s: %w", outDir, err)
	}
	staging := fmt.Sprintf("%s.staging-%s", outDir, uuid.New().String()[:8])
	w, err := vectordb.NewWriter(staging, b.indexType, b.embedder.Dimensions())
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(passages); i += b.batchSize {
		if err := ctx.Err(); err != nil {
			_ = w.Abort()
			return nil, err
		}
		end := i + b.batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[i:end]
		texts := make([]string, len(batch))
		for j, p := range batch {
			texts[j] = p.Content
		}
		vectors, err := b.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			_ = w.Abort()
			return nil, fmt.Errorf("embed passages %d-%d: %w", i, end-1, err)
		}
		if err := w.Add(ctx, batch, vectors); err != nil {
			_ = w.Abort()
			return nil, err
		}
		b.logger.Debug("embedded batch", zap.Int("done", end), zap.Int("total", len(passages)))
	}

	framing := b.embedder.Framing()
	manifest := vectordb.Manifest{
		Model:         b.model,
		Dimensions:    b.embedder.Dimensions(),
		QueryPrefix:   framing.QueryPrefix,
		PassagePrefix: framing.PassagePrefix,
		ChunkSize:     b.cfg.ChunkSize,
		ChunkOverlap:  b.cfg.ChunkOverlap,
		Source:        filepath.Base(corpusPath),
		SourceID:      sourceID,
		BuiltAt:       time.Now().UTC(),
	}
	if err := w.Commit(manifest); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}
	if err := replaceDir(staging, outDir); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	written, err := vectordb.ReadManifest(outDir)
	if err != nil {
		return nil, err
	}
	b.logger.Info("index built",
		zap.String("path", outDir),
		zap.Int("passages", written.PassageCount),
		zap.String("index_type", written.IndexType),
		zap.Duration("took", time.Since(start)))
	return written, nil
}

// UpToDate reports whether outDir already holds an index built from the current contents of
// corpusPath with this builder's model and chunking.
func (b *Builder) UpToDate(corpusPath, outDir string) bool {
	m, err := vectordb.ReadManifest(outDir)
	if err != nil || m.SourceID == "" {
		return false
	}
	id, err := fileid.FileContentID(corpusPath)
	if err != nil {
		return false
	}
	return m.SourceID == id &&
		m.Model == b.model &&
		m.Dimensions == b.embedder.Dimensions() &&
		m.ChunkSize == b.cfg.ChunkSize &&
		m.ChunkOverlap == b.cfg.ChunkOverlap
}

// replaceDir moves src to dst, removing any previous dst once src is in place.
func replaceDir(src, dst string) error {
	old := ""
	if _, err := os.Stat(dst); err == nil {
		old = fmt.Sprintf("%s.old-%s", dst, uuid.New().String()[:8])
		if err := os.Rename(dst, old); err != nil {
			return fmt.Errorf("move previous index aside: %w", err)
		}
	}
	if err := os.Rename(src, dst); err != nil {
		if old != "" {
			_ = os.Rename(old, dst)
		}
		return fmt.Errorf("install index: %w", err)
	}
	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("remove previous index: %w", err)
		}
	}
	return nil
}
