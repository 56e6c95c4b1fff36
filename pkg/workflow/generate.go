package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/groundworkhq/groundwork/pkg/llm"
)

// buildGroundedRequest assembles the grounded generation request: the system
// prompt, a context block with the reranked passages and their sources, then
// the conversation history ending in the current user message.
func buildGroundedRequest(s *State) *llm.ChatRequest {
	var block strings.Builder
	block.WriteString("--- Reference passages ---\n")
	for i, passage := range s.Passages {
		fmt.Fprintf(&block, "[Passage %d (source: %s)]\n%s\n\n", i+1, passage.Source, passage.Text)
	}
	block.WriteString("--- End reference passages ---")

	messages := make([]llm.Message, 0, len(s.History)+2)
	messages = append(messages,
		llm.NewMessage(llm.RoleSystem, GroundedPrompt),
		llm.NewMessage(llm.RoleSystem, block.String()),
	)
	messages = append(messages, s.History...)

	return &llm.ChatRequest{Messages: messages}
}

// buildUngroundedRequest assembles the free conversational request.
func buildUngroundedRequest(s *State) *llm.ChatRequest {
	messages := make([]llm.Message, 0, len(s.History)+1)
	messages = append(messages, llm.NewMessage(llm.RoleSystem, UngroundedPrompt))
	messages = append(messages, s.History...)

	return &llm.ChatRequest{Messages: messages}
}

// generate streams the answer for the chosen target. Each non-empty chunk is
// appended to the cumulative answer and emitted; after the stream is
// exhausted a final marker event carries the complete answer with no new
// increment. Any stream error aborts the run without a marker.
func (g *Graph) generate(ctx context.Context, s *State, target Target, emit EmitFunc) error {
	var (
		node string
		req  *llm.ChatRequest
	)
	if target == TargetGrounded {
		node = NodeGenerateGrounded
		req = buildGroundedRequest(s)
	} else {
		node = NodeGenerateUngrounded
		req = buildUngroundedRequest(s)
	}

	stream, err := g.model.ChatStream(ctx, req)
	if err != nil {
		return fmt.Errorf("starting answer stream: %w", err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Next()
		if err != nil {
			return fmt.Errorf("reading answer stream: %w", err)
		}
		if chunk == nil {
			break
		}
		if chunk.Content == "" {
			continue
		}

		s.Answer += chunk.Content
		if err := emit(Event{Node: node, State: s.snapshot()}); err != nil {
			return err
		}
	}

	// Final marker: complete answer, no new text.
	return emit(Event{Node: node, State: s.snapshot()})
}
