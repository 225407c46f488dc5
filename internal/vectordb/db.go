// Package vectordb loads a persisted index directory (manifest, passage store and vector index)
// into an immutable handle that answers similarity queries with passage text.
package vectordb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/hyperjump/wonderland/internal/embedding"
	"github.com/hyperjump/wonderland/internal/models"
	"github.com/hyperjump/wonderland/internal/storage"
	"github.com/hyperjump/wonderland/internal/vector"
)

// ErrNotFound is returned by Open when the index directory does not exist.
var ErrNotFound = errors.New("vector database not found")

const tracerName = "github.com/hyperjump/wonderland/internal/vectordb"

// DB is a loaded index. It is built once by Open and never modified afterwards, so it is
// safe for concurrent use.
type DB struct {
	dir      string
	manifest Manifest
	store    storage.Storage
	index    vector.VectorIndex
	embedder embedding.QueryEmbedder
	logger   *zap.Logger
}

// Options are the expectations Open checks against the manifest.
type Options struct {
	// Model is the configured embedding model name. Empty skips the check.
	Model string
}

// framed is implemented by embedders that know their query/passage prefixes.
type framed interface {
	Framing() embedding.Framing
}

// Open loads the index directory at dir. The embedder must produce vectors of the manifest's
// dimension; a missing directory returns an error wrapping ErrNotFound.
func Open(ctx context.Context, dir string, embedder embedding.QueryEmbedder, opts Options, logger *zap.Logger) (*DB, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest.Dimensions != embedder.Dimensions() {
		return nil, fmt.Errorf("%w: index built with %d dimensions, embedder produces %d",
			vector.ErrDimensionMismatch, manifest.Dimensions, embedder.Dimensions())
	}
	if opts.Model != "" && manifest.Model != "" && manifest.Model != opts.Model {
		return nil, fmt.Errorf("index built with model %q, configured model is %q", manifest.Model, opts.Model)
	}
	if f, ok := embedder.(framed); ok && manifest.QueryPrefix != "" {
		if f.Framing().QueryPrefix != manifest.QueryPrefix {
			return nil, fmt.Errorf("index expects query prefix %q, embedder uses %q",
				manifest.QueryPrefix, f.Framing().QueryPrefix)
		}
	}

	store, err := storage.OpenSQLiteReadOnly(filepath.Join(dir, PassagesFile))
	if err != nil {
		return nil, fmt.Errorf("open passage store: %w", err)
	}

	index, err := vector.NewVectorIndex(manifest.IndexType, manifest.Dimensions)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	if err := index.Load(filepath.Join(dir, IndexBase)); err != nil {
		_ = index.Close()
		_ = store.Close()
		return nil, fmt.Errorf("load vector index: %w", err)
	}

	count, err := store.CountPassages(ctx)
	if err != nil {
		_ = index.Close()
		_ = store.Close()
		return nil, fmt.Errorf("count passages: %w", err)
	}
	if int64(index.Size()) != count || int(count) != manifest.PassageCount {
		logger.Warn("index size differs from passage count",
			zap.Int("index_size", index.Size()),
			zap.Int64("passages", count),
			zap.Int("manifest_passages", manifest.PassageCount))
	}

	logger.Info("vector database loaded",
		zap.String("path", dir),
		zap.String("model", manifest.Model),
		zap.String("index_type", index.Type()),
		zap.Int("vectors", index.Size()),
		zap.Time("built_at", manifest.BuiltAt))

	return &DB{
		dir:      dir,
		manifest: *manifest,
		store:    store,
		index:    index,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Search embeds query with query framing and returns up to k passages, best match first.
func (db *DB) Search(ctx context.Context, query string, k int) ([]*models.Passage, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "vectordb.Search")
	defer span.End()
	span.SetAttributes(attribute.Int("search.k", k))

	passages, err := db.search(ctx, query, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.results", len(passages)))
	return passages, nil
}

func (db *DB) search(ctx context.Context, query string, k int) ([]*models.Passage, error) {
	if k <= 0 {
		return []*models.Passage{}, nil
	}
	start := time.Now()
	vec, err := db.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := db.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	passages, err := db.store.GetPassages(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load passages: %w", err)
	}
	db.logger.Debug("similarity search",
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
		zap.Duration("took", time.Since(start)))
	return passages, nil
}

// Manifest returns the manifest the index was built with.
func (db *DB) Manifest() Manifest {
	return db.manifest
}

// Dir returns the index directory.
func (db *DB) Dir() string {
	return db.dir
}

// Stats describes a loaded index for the status endpoint.
type Stats struct {
	Passages       int64     `json:"passages"`
	Vectors        int       `json:"vectors"`
	IndexType      string    `json:"index_type"`
	Model          string    `json:"model"`
	Dimensions     int       `json:"dimensions"`
	BuiltAt        time.Time `json:"built_at"`
	DiskUsageBytes int64     `json:"disk_usage_bytes"`
}

// Stats reports counts and sizes of the loaded index.
func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	count, err := db.store.CountPassages(ctx)
	if err != nil {
		return nil, fmt.Errorf("count passages: %w", err)
	}
	usage, err := storage.DiskUsageBytes(db.dir)
	if err != nil {
		return nil, fmt.Errorf("disk usage: %w", err)
	}
	return &Stats{
		Passages:       count,
		Vectors:        db.index.Size(),
		IndexType:      db.index.Type(),
		Model:          db.manifest.Model,
		Dimensions:     db.manifest.Dimensions,
		BuiltAt:        db.manifest.BuiltAt,
		DiskUsageBytes: usage,
	}, nil
}

// Close releases the vector index and passage store. The embedder is owned by the caller.
func (db *DB) Close() error {
	return errors.Join(db.index.Close(), db.store.Close())
}
