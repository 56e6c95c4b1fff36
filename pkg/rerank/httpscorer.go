package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPScorer calls a cross-encoder reranking service over HTTP. The request
// and response bodies follow the text-embeddings-inference /rerank shape:
// one query, a list of candidate texts, and a score per candidate.
type HTTPScorer struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPScorerConfig holds configuration for the HTTP scorer.
type HTTPScorerConfig struct {
	// BaseURL is the reranker service URL, e.g. "http://localhost:8083".
	BaseURL string
}

// rerankRequest is the request body for the /rerank endpoint.
type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

// rerankResult is a single scored candidate.
type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// NewHTTPScorer creates a scorer against a cross-encoder rerank service.
func NewHTTPScorer(cfg HTTPScorerConfig) *HTTPScorer {
	return &HTTPScorer{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Score scores a single (query, passage) pair.
func (s *HTTPScorer) Score(ctx context.Context, query, passage string) (float64, error) {
	reqBody := rerankRequest{
		Query: query,
		Texts: []string{passage},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshaling rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/rerank", bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("creating rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("reranker returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, fmt.Errorf("decoding rerank response: %w", err)
	}

	if len(results) == 0 {
		return 0, fmt.Errorf("reranker returned no scores")
	}

	return results[0].Score, nil
}

var _ Scorer = (*HTTPScorer)(nil)
