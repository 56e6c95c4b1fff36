// Package vector provides interfaces and implementations for storing and
// querying passage embeddings.
package vector

import "context"

// Document represents a stored passage with its embedding.
type Document struct {
	// ID is a unique identifier for the document.
	ID string

	// Text is the passage text.
	Text string

	// Source is the label of the document the passage came from.
	Source string

	// Embedding is the vector representation of the passage text.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score is the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of passage embeddings.
type Driver interface {
	// Add stores documents with their embeddings. Documents with an existing
	// ID are updated.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
