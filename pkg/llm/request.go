package llm

// ChatRequest represents a provider-agnostic chat completion request.
type ChatRequest struct {
	// Model name (e.g., "llama3.2", "qwen3:8b")
	Model string `json:"model"`

	// Conversation messages in chronological order
	Messages []Message `json:"messages"`

	// Format constrains the output. "json" forces the model to emit a single
	// JSON object; used for structured classification.
	Format string `json:"format,omitempty"`

	// Generation parameters
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}
