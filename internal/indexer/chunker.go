// Package indexer builds an index directory from a corpus file: it extracts and cleans the
// text, splits it into overlapping passages, embeds them and writes the vector database.
package indexer

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/wonderland/internal/models"
)

// Chunker splits text into overlapping word-based passages.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words). The overlap is
// kept below the size so every window advances.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into passages of chunkSize words, each starting chunkSize-chunkOverlap
// words after the previous one. Passages get random IDs and their position in the corpus.
func (c *Chunker) Chunk(text string) []*models.Passage {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	passages := make([]*models.Passage, 0, len(words)/step+1)
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		passages = append(passages, &models.Passage{
			ID:       uuid.New().String(),
			Position: len(passages),
			Content:  strings.Join(words[i:end], " "),
		})
		if end == len(words) {
			break
		}
	}
	return passages
}
