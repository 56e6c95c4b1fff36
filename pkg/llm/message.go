// Package llm defines provider-agnostic chat types and the client interface
// used to call a chat-completion model.
package llm

// Roles used in conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

// ErrorResponse is the JSON error body returned by HTTP handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}
