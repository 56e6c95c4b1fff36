// Code generated by ent, DO NOT EDIT.

package ent

import (
	"time"

	"github.com/groundworkhq/groundwork/pkg/storage/ent/message"
	"github.com/groundworkhq/groundwork/pkg/storage/ent/schema"
	"github.com/groundworkhq/groundwork/pkg/storage/ent/session"
)

// The init function reads all schema descriptors with runtime code
// (default values, validators, hooks and policies) and stitches it
// to their package variables.
func init() {
	messageFields := schema.Message{}.Fields()
	_ = messageFields
	// messageDescSessionID is the schema descriptor for session_id field.
	messageDescSessionID := messageFields[1].Descriptor()
	// message.SessionIDValidator is a validator for the "session_id" field. It is called by the builders before save.
	message.SessionIDValidator = messageDescSessionID.Validators[0].(func(string) error)
	// messageDescRole is the schema descriptor for role field.
	messageDescRole := messageFields[2].Descriptor()
	// message.RoleValidator is a validator for the "role" field. It is called by the builders before save.
	message.RoleValidator = messageDescRole.Validators[0].(func(string) error)
	// messageDescCreatedAt is the schema descriptor for created_at field.
	messageDescCreatedAt := messageFields[5].Descriptor()
	// message.DefaultCreatedAt holds the default value on creation for the created_at field.
	message.DefaultCreatedAt = messageDescCreatedAt.Default.(func() time.Time)
	// messageDescID is the schema descriptor for id field.
	messageDescID := messageFields[0].Descriptor()
	// message.IDValidator is a validator for the "id" field. It is called by the builders before save.
	message.IDValidator = messageDescID.Validators[0].(func(string) error)
	sessionFields := schema.Session{}.Fields()
	_ = sessionFields
	// sessionDescTopic is the schema descriptor for topic field.
	sessionDescTopic := sessionFields[1].Descriptor()
	// session.TopicValidator is a validator for the "topic" field. It is called by the builders before save.
	session.TopicValidator = sessionDescTopic.Validators[0].(func(string) error)
	// sessionDescCreatedAt is the schema descriptor for created_at field.
	sessionDescCreatedAt := sessionFields[2].Descriptor()
	// session.DefaultCreatedAt holds the default value on creation for the created_at field.
	session.DefaultCreatedAt = sessionDescCreatedAt.Default.(func() time.Time)
	// sessionDescID is the schema descriptor for id field.
	sessionDescID := sessionFields[0].Descriptor()
	// session.IDValidator is a validator for the "id" field. It is called by the builders before save.
	session.IDValidator = sessionDescID.Validators[0].(func(string) error)
}
