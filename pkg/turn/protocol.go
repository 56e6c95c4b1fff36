// Package turn drives one chat turn end to end: it persists the user
// message, runs the workflow graph, converts cumulative answer snapshots
// into incremental SSE updates, persists the assistant reply, and signals
// completion on the stream.
package turn

// Stream event types on the outbound SSE channel.
const (
	EventTypeUpdate = "update"
	EventTypeError  = "error"
	EventTypeEnd    = "end"
)

// StreamEvent is the JSON payload of one outbound SSE event.
type StreamEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// UpdateData carries one incremental piece of answer text.
type UpdateData struct {
	Content string `json:"content"`
}

// EndData carries the complete answer, sent once at successful completion.
type EndData struct {
	FullResponse string `json:"full_response"`
}

// NewUpdateEvent wraps an answer increment.
func NewUpdateEvent(content string) StreamEvent {
	return StreamEvent{Type: EventTypeUpdate, Data: UpdateData{Content: content}}
}

// NewErrorEvent wraps a human-readable error description.
func NewErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventTypeError, Data: message}
}

// NewEndEvent wraps the complete answer.
func NewEndEvent(fullResponse string) StreamEvent {
	return StreamEvent{Type: EventTypeEnd, Data: EndData{FullResponse: fullResponse}}
}
