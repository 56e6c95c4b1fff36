// Package eventstream defines transport-neutral events emitted after a chat
// turn completes, plus the Publisher interface backends implement.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a turn is fully persisted.
	EventTypeTurnCompleted = "groundwork.turn.completed"
)

// TurnCompletedEvent is a transport-neutral event payload for a completed
// chat turn. Consumers use it for analytics and audit; it never feeds back
// into the request path.
type TurnCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	SessionID          string `json:"session_id"`
	UserMessageID      string `json:"user_message_id"`
	AssistantMessageID string `json:"assistant_message_id,omitempty"`

	// Intent is the classified intent label for the turn.
	Intent string `json:"intent"`

	// Route is the generation path taken ("generate_grounded" or
	// "generate_ungrounded").
	Route string `json:"route"`

	// PassageCount is the number of passages that survived reranking.
	PassageCount int `json:"passage_count"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}
