// Package retrieval performs similarity search over indexed passages.
// It combines an embedder with a vector driver and exposes the narrow
// Searcher interface consumed by the workflow.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/embeddings"
	"github.com/groundworkhq/groundwork/pkg/vector"
)

// Passage is a retrieved text fragment with a source label, used as
// grounding evidence.
type Passage struct {
	// Text is the passage content.
	Text string `json:"text"`

	// Source is the label of the document the passage came from.
	Source string `json:"source"`

	// Score is the similarity or relevance score most recently assigned.
	Score float64 `json:"score"`
}

// Searcher retrieves the top-k passages most similar to a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Passage, error)
}

// VectorSearcher implements Searcher by embedding the query and querying a
// vector driver.
type VectorSearcher struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	logger   *zap.Logger
}

// NewVectorSearcher creates a Searcher over the given embedder and driver.
// A nil driver is permitted and yields empty results: an absent index is a
// valid, expected state rather than an error.
func NewVectorSearcher(embedder embeddings.Embedder, driver vector.Driver, logger *zap.Logger) *VectorSearcher {
	return &VectorSearcher{
		embedder: embedder,
		driver:   driver,
		logger:   logger,
	}
}

// Search embeds the query and returns the top-k most similar passages.
func (s *VectorSearcher) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	if s.driver == nil || s.embedder == nil {
		s.logger.Warn("vector index not configured, returning no passages")
		return []Passage{}, nil
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.driver.Query(ctx, queryEmbedding, k)
	if err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(results))
	for _, result := range results {
		passages = append(passages, Passage{
			Text:   result.Text,
			Source: result.Source,
			Score:  float64(result.Score),
		})
	}

	s.logger.Debug("retrieved passages",
		zap.String("query", query),
		zap.Int("count", len(passages)),
	)

	return passages, nil
}

var _ Searcher = (*VectorSearcher)(nil)
