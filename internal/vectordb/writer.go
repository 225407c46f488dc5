package vectordb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/wonderland/internal/models"
	"github.com/hyperjump/wonderland/internal/storage"
	"github.com/hyperjump/wonderland/internal/vector"
)

// Writer fills a new index directory. Passages and their vectors are added in batches;
// Commit saves the vector index and writes the manifest last, so a directory without a
// manifest is never a complete index.
type Writer struct {
	dir       string
	indexType string
	store     *storage.SQLiteStorage
	index     vector.VectorIndex
	count     int
	closed    bool
}

// NewWriter creates dir (which must not already contain an index) and opens its stores.
func NewWriter(dir, indexType string, dimensions int) (*Writer, error) {
	if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
		return nil, fmt.Errorf("%s already contains an index", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	index, err := vector.NewVectorIndex(indexType, dimensions)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, PassagesFile))
	if err != nil {
		_ = index.Close()
		return nil, err
	}
	return &Writer{dir: dir, indexType: index.Type(), store: store, index: index}, nil
}

// Add stores passages and their vectors. vectors[i] belongs to passages[i].
func (w *Writer) Add(ctx context.Context, passages []*models.Passage, vectors [][]float32) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	if len(passages) != len(vectors) {
		return fmt.Errorf("got %d passages and %d vectors", len(passages), len(vectors))
	}
	ids := make([]string, len(passages))
	for i, p := range passages {
		ids[i] = p.ID
	}
	if err := w.index.Add(ctx, ids, vectors); err != nil {
		return fmt.Errorf("add vectors: %w", err)
	}
	if err := w.store.BatchCreatePassages(ctx, passages); err != nil {
		return fmt.Errorf("store passages: %w", err)
	}
	w.count += len(passages)
	return nil
}

// Count returns the number of passages added so far.
func (w *Writer) Count() int {
	return w.count
}

// Commit saves the vector index, writes m (with the final passage count and index type)
// and closes the writer.
func (w *Writer) Commit(m Manifest) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	if err := w.index.Save(filepath.Join(w.dir, IndexBase)); err != nil {
		_ = w.close()
		return fmt.Errorf("save vector index: %w", err)
	}
	if err := w.close(); err != nil {
		return err
	}
	m.IndexType = w.indexType
	m.PassageCount = w.count
	return WriteManifest(w.dir, &m)
}

// Abort closes the writer and removes the directory.
func (w *Writer) Abort() error {
	err := w.close()
	return errors.Join(err, os.RemoveAll(w.dir))
}

func (w *Writer) close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return errors.Join(w.index.Close(), w.store.Close())
}
