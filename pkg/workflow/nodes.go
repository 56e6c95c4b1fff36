package workflow

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/rerank"
	"github.com/groundworkhq/groundwork/pkg/retrieval"
)

// classifyResponse is the structured output requested from the classifier.
type classifyResponse struct {
	Intent string `json:"intent"`
}

// classifyIntent labels the turn as grounded or ungrounded. A model failure
// or an unparseable label falls back to grounded, the conservative choice for
// a document assistant.
func (g *Graph) classifyIntent(ctx context.Context, s *State) {
	req := &llm.ChatRequest{
		Format: "json",
		Messages: []llm.Message{
			llm.NewMessage(llm.RoleSystem, ClassifyPrompt),
			llm.NewMessage(llm.RoleUser, s.OriginalQuery),
		},
	}

	resp, err := g.model.Chat(ctx, req)
	if err != nil {
		g.logger.Warn("intent classification failed, assuming grounded", zap.Error(err))
		s.Intent = IntentGrounded
		return
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(resp.Message.Content), &parsed); err != nil {
		g.logger.Warn("unparseable intent label, assuming grounded",
			zap.String("content", resp.Message.Content))
		s.Intent = IntentGrounded
		return
	}

	switch parsed.Intent {
	case "general_chat":
		s.Intent = IntentUngrounded
	case "document_question":
		s.Intent = IntentGrounded
	default:
		g.logger.Warn("unknown intent label, assuming grounded",
			zap.String("label", parsed.Intent))
		s.Intent = IntentGrounded
	}
}

// rewriteQuery turns the latest user message into a standalone retrieval
// query using the prior conversation. With no prior turns the original query
// is already standalone and the model call is skipped. On model failure the
// original query is used as-is; retrieval still runs.
func (g *Graph) rewriteQuery(ctx context.Context, s *State) {
	history := s.History
	if len(history) > 0 {
		// The last message is the current turn; only earlier turns provide
		// context for reference resolution.
		history = history[:len(history)-1]
	}
	if len(history) == 0 {
		s.RewrittenQuery = s.OriginalQuery
		return
	}

	var transcript strings.Builder
	for _, msg := range history {
		transcript.WriteString(msg.Role)
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}
	transcript.WriteString("Latest user message: ")
	transcript.WriteString(s.OriginalQuery)

	req := &llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewMessage(llm.RoleSystem, RewritePrompt),
			llm.NewMessage(llm.RoleUser, transcript.String()),
		},
	}

	resp, err := g.model.Chat(ctx, req)
	if err != nil {
		g.logger.Warn("query rewrite failed, using original query", zap.Error(err))
		s.RewrittenQuery = s.OriginalQuery
		return
	}

	rewritten := strings.TrimSpace(resp.Message.Content)
	if rewritten == "" {
		rewritten = s.OriginalQuery
	}
	s.RewrittenQuery = rewritten
}

// retrievePassages fetches candidate passages for the rewritten query. A
// search failure yields an empty passage list rather than aborting the turn;
// routing then falls through to ungrounded generation.
func (g *Graph) retrievePassages(ctx context.Context, s *State) {
	passages, err := g.searcher.Search(ctx, s.RewrittenQuery, g.topK)
	if err != nil {
		g.logger.Warn("retrieval failed, continuing without passages", zap.Error(err))
		s.Passages = []retrieval.Passage{}
		return
	}
	if passages == nil {
		passages = []retrieval.Passage{}
	}
	s.Passages = passages
}

// rerankPassages re-scores the candidates and keeps only strong matches. A
// scorer failure clears the passage list, which routes the turn to ungrounded
// generation. Without a configured scorer the candidates pass through.
func (g *Graph) rerankPassages(ctx context.Context, s *State) {
	if g.scorer == nil || len(s.Passages) == 0 {
		return
	}

	kept, err := rerank.Rerank(ctx, g.scorer, s.RewrittenQuery, s.Passages, g.threshold)
	if err != nil {
		g.logger.Warn("reranking failed, continuing without passages", zap.Error(err))
		s.Passages = []retrieval.Passage{}
		return
	}
	s.Passages = kept
}
