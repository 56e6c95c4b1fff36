// Package entdriver
package entdriver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/groundworkhq/groundwork/pkg/storage"
	"github.com/groundworkhq/groundwork/pkg/storage/ent"
	"github.com/groundworkhq/groundwork/pkg/storage/ent/message"
	"github.com/groundworkhq/groundwork/pkg/storage/ent/session"
)

// EntDriver provides storage operations using an ent client.
// It is database-agnostic and can be embedded by specific drivers.
type EntDriver struct {
	Client *ent.Client
}

// CreateSession creates a session with the given topic.
func (ed *EntDriver) CreateSession(ctx context.Context, topic string) (*storage.Session, error) {
	row, err := ed.Client.Session.Create().
		SetID(uuid.NewString()).
		SetTopic(topic).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return toSession(row), nil
}

// GetSession returns a session with its messages in append order.
func (ed *EntDriver) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	row, err := ed.Client.Session.Query().
		Where(session.ID(id)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, storage.ErrSessionNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	messages, err := ed.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	s := toSession(row)
	s.Messages = messages
	return s, nil
}

// ListSessions returns all sessions, newest first, without messages.
func (ed *EntDriver) ListSessions(ctx context.Context) ([]*storage.Session, error) {
	rows, err := ed.Client.Session.Query().
		Order(ent.Desc(session.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*storage.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, toSession(row))
	}

	return sessions, nil
}

// DeleteSession removes a session; its messages go with it via the cascade.
func (ed *EntDriver) DeleteSession(ctx context.Context, id string) error {
	err := ed.Client.Session.DeleteOneID(id).Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return storage.ErrSessionNotFound{ID: id}
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// AppendMessage durably adds one message to a session. The message gets the
// next sequence number so transcript order survives equal timestamps.
func (ed *EntDriver) AppendMessage(ctx context.Context, sessionID, role, text string) (*storage.Message, error) {
	exists, err := ed.Client.Session.Query().
		Where(session.ID(sessionID)).
		Exist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}
	if !exists {
		return nil, storage.ErrSessionNotFound{ID: sessionID}
	}

	seq, err := ed.nextSeq(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	row, err := ed.Client.Message.Create().
		SetID(uuid.NewString()).
		SetSessionID(sessionID).
		SetRole(role).
		SetText(text).
		SetSeq(seq).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return toMessage(row), nil
}

// ListMessages returns a session's messages in append order.
func (ed *EntDriver) ListMessages(ctx context.Context, sessionID string) ([]*storage.Message, error) {
	rows, err := ed.Client.Message.Query().
		Where(message.SessionID(sessionID)).
		Order(ent.Asc(message.FieldSeq)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*storage.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, toMessage(row))
	}

	return messages, nil
}

// Close closes the underlying ent client.
func (ed *EntDriver) Close() error {
	return ed.Client.Close()
}

// nextSeq returns the next sequence number for a session.
func (ed *EntDriver) nextSeq(ctx context.Context, sessionID string) (int64, error) {
	last, err := ed.Client.Message.Query().
		Where(message.SessionID(sessionID)).
		Order(ent.Desc(message.FieldSeq)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to query last message: %w", err)
	}

	return last.Seq + 1, nil
}

func toSession(row *ent.Session) *storage.Session {
	return &storage.Session{
		ID:        row.ID,
		Topic:     row.Topic,
		CreatedAt: row.CreatedAt,
	}
}

func toMessage(row *ent.Message) *storage.Message {
	return &storage.Message{
		ID:        row.ID,
		SessionID: row.SessionID,
		Role:      row.Role,
		Text:      row.Text,
		CreatedAt: row.CreatedAt,
	}
}

var _ storage.Store = (*EntDriver)(nil)
