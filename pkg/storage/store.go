// Package storage
package storage

import (
	"context"
	"time"
)

// Session is one chat conversation.
type Session struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`

	// Messages is populated by GetSession, chronological order.
	Messages []*Message `json:"messages,omitempty"`
}

// Message is one turn of a session, either the user's or the assistant's.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for persisting sessions and their messages in
// a storage backend. Message order within a session is stable: ListMessages
// and GetSession return messages in the order they were appended.
type Store interface {
	// CreateSession creates a session with the given topic.
	CreateSession(ctx context.Context, topic string) (*Session, error)

	// GetSession returns a session with its messages, or ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)

	// ListSessions returns all sessions, newest first, without messages.
	ListSessions(ctx context.Context) ([]*Session, error)

	// DeleteSession removes a session and all of its messages.
	DeleteSession(ctx context.Context, id string) error

	// AppendMessage durably adds one message to a session.
	AppendMessage(ctx context.Context, sessionID, role, text string) (*Message, error)

	// ListMessages returns a session's messages in append order.
	ListMessages(ctx context.Context, sessionID string) ([]*Message, error)

	// Close closes the store and releases any resources.
	Close() error
}
