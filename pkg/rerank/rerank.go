// Package rerank re-scores retrieved passages against the query with a
// cross-encoder relevance scorer and filters out weak matches.
package rerank

import (
	"context"
	"sort"

	"github.com/groundworkhq/groundwork/pkg/retrieval"
)

// DefaultThreshold is the relevance cutoff. Passages scoring at or below the
// threshold are dropped; the comparison is strictly greater-than.
const DefaultThreshold = 0.5

// Scorer scores a (query, passage) pair. Higher means more relevant.
type Scorer interface {
	Score(ctx context.Context, query, passage string) (float64, error)
}

// Rerank scores every passage against the query, sorts descending by score
// (ties keep their retrieval order), and keeps only passages strictly above
// the threshold. An empty input returns immediately without invoking the
// scorer.
func Rerank(ctx context.Context, scorer Scorer, query string, passages []retrieval.Passage, threshold float64) ([]retrieval.Passage, error) {
	if len(passages) == 0 {
		return []retrieval.Passage{}, nil
	}

	scored := make([]retrieval.Passage, 0, len(passages))
	for _, passage := range passages {
		score, err := scorer.Score(ctx, query, passage.Text)
		if err != nil {
			return nil, err
		}
		passage.Score = score
		scored = append(scored, passage)
	}

	// Stable sort keeps retrieval order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	kept := make([]retrieval.Passage, 0, len(scored))
	for _, passage := range scored {
		if passage.Score > threshold {
			kept = append(kept, passage)
		}
	}

	return kept, nil
}
