package workflow

import (
	"context"
	"errors"

	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/retrieval"
)

// fakeClient scripts the model: classification answers come from
// classifyContent (structured JSON calls), rewrites from rewriteContent, and
// the generation stream replays chunks.
type fakeClient struct {
	classifyContent string
	rewriteContent  string
	chatErr         error

	chunks         []string
	streamStartErr error
	streamErr      error

	chatRequests   []*llm.ChatRequest
	streamRequests []*llm.ChatRequest
}

func (f *fakeClient) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.chatRequests = append(f.chatRequests, req)
	if f.chatErr != nil {
		return nil, f.chatErr
	}

	content := f.rewriteContent
	if req.Format == "json" {
		content = f.classifyContent
	}
	return &llm.ChatResponse{
		Message: llm.NewMessage(llm.RoleAssistant, content),
	}, nil
}

func (f *fakeClient) ChatStream(_ context.Context, req *llm.ChatRequest) (llm.Stream, error) {
	f.streamRequests = append(f.streamRequests, req)
	if f.streamStartErr != nil {
		return nil, f.streamStartErr
	}
	return &fakeStream{chunks: f.chunks, err: f.streamErr}, nil
}

// fakeStream replays chunks, then an optional error, then exhaustion.
type fakeStream struct {
	chunks []string
	err    error
	pos    int
	closed bool
}

func (s *fakeStream) Next() (*llm.StreamChunk, error) {
	if s.pos < len(s.chunks) {
		chunk := &llm.StreamChunk{Content: s.chunks[s.pos]}
		s.pos++
		return chunk, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// fakeSearcher returns scripted passages and counts calls.
type fakeSearcher struct {
	results []retrieval.Passage
	err     error
	calls   int
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]retrieval.Passage, error) {
	f.calls++
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// fakeScorer returns a fixed score for every passage.
type fakeScorer struct {
	score float64
	err   error
	calls int
}

func (f *fakeScorer) Score(_ context.Context, _, _ string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.score, nil
}

var errModelDown = errors.New("model unavailable")
