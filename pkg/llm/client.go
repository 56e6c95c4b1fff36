package llm

import "context"

// Client is the chat-completion model client consumed by the workflow.
type Client interface {
	// Chat performs a blocking completion and returns the full response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ChatStream performs a streaming completion. The caller owns the
	// returned Stream and must Close it.
	ChatStream(ctx context.Context, req *ChatRequest) (Stream, error)
}
