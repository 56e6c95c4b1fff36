// Package inmemory provides a map-backed session store for tests and
// ephemeral runs. Nothing survives process exit.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/groundworkhq/groundwork/pkg/storage"
)

// Store implements storage.Store with in-process maps.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*storage.Session
	messages map[string][]*storage.Message
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*storage.Session),
		messages: make(map[string][]*storage.Message),
	}
}

// CreateSession creates a session with the given topic.
func (s *Store) CreateSession(_ context.Context, topic string) (*storage.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &storage.Session{
		ID:        uuid.NewString(),
		Topic:     topic,
		CreatedAt: time.Now(),
	}
	s.sessions[session.ID] = session

	return copySession(session), nil
}

// GetSession returns a session with its messages in append order.
func (s *Store) GetSession(_ context.Context, id string) (*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, storage.ErrSessionNotFound{ID: id}
	}

	out := copySession(session)
	out.Messages = copyMessages(s.messages[id])
	return out, nil
}

// ListSessions returns all sessions, newest first, without messages.
func (s *Store) ListSessions(_ context.Context) ([]*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*storage.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, copySession(session))
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}

// DeleteSession removes a session and all of its messages.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return storage.ErrSessionNotFound{ID: id}
	}

	delete(s.sessions, id)
	delete(s.messages, id)
	return nil
}

// AppendMessage durably adds one message to a session.
func (s *Store) AppendMessage(_ context.Context, sessionID, role, text string) (*storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, storage.ErrSessionNotFound{ID: sessionID}
	}

	message := &storage.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], message)

	out := *message
	return &out, nil
}

// ListMessages returns a session's messages in append order.
func (s *Store) ListMessages(_ context.Context, sessionID string) ([]*storage.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyMessages(s.messages[sessionID]), nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func copySession(session *storage.Session) *storage.Session {
	out := *session
	out.Messages = nil
	return &out
}

func copyMessages(messages []*storage.Message) []*storage.Message {
	out := make([]*storage.Message, 0, len(messages))
	for _, message := range messages {
		m := *message
		out = append(out, &m)
	}
	return out
}

var _ storage.Store = (*Store)(nil)
