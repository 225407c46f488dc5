// Package models defines core data structures for passages, queries, and responses.
package models

import "time"

// Passage is a stored chunk of corpus text. Its embedding lives in the vector index under the same ID.
type Passage struct {
	ID        string    `json:"id" db:"id"`
	Position  int       `json:"position" db:"position"`
	Content   string    `json:"content" db:"content"`
	Embedding []float32 `json:"-" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Contents returns the text of each passage, preserving order.
func Contents(passages []*Passage) []string {
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		out = append(out, p.Content)
	}
	return out
}
