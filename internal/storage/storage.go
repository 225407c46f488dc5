// Package storage defines the persistence interface for corpus passages.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/wonderland/internal/models"
)

// ErrPassageNotFound is returned when a passage ID has no row in the store.
var ErrPassageNotFound = errors.New("passage not found")

// Storage defines passage persistence operations. The build writes passages once;
// the server opens the store read-only.
type Storage interface {
	BatchCreatePassages(ctx context.Context, passages []*models.Passage) error
	GetPassage(ctx context.Context, id string) (*models.Passage, error)
	// GetPassages returns passages in the order of ids.
	GetPassages(ctx context.Context, ids []string) ([]*models.Passage, error)
	CountPassages(ctx context.Context) (int64, error)

	Close() error
}
