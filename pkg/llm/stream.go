package llm

import "time"

// StreamChunk represents a single fragment in a streaming response.
type StreamChunk struct {
	// Model that generated the chunk
	Model string `json:"model"`

	// Chunk timestamp
	CreatedAt time.Time `json:"created_at,omitempty"`

	// The text fragment carried by this chunk. May be empty on the final chunk.
	Content string `json:"content"`

	// Whether this is the final chunk
	Done bool `json:"done"`
}

// Stream is a lazy, ordered, finite sequence of chunks from a streaming
// chat completion. Next returns nil, nil once the stream is exhausted.
type Stream interface {
	Next() (*StreamChunk, error)
	Close() error
}
