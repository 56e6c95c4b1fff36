package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Message holds the schema definition for the Message entity, one user or
// assistant turn within a session.
type Message struct {
	ent.Schema
}

// Fields of the Message.
func (Message) Fields() []ent.Field {
	return []ent.Field{
		// id is a UUID string assigned by the driver
		field.String("id").
			Unique().
			Immutable().
			NotEmpty(),

		// session_id links the message to its session
		field.String("session_id").
			NotEmpty(),

		// role indicates who produced the message ("user", "assistant")
		field.String("role").
			NotEmpty(),

		// text is the full message content
		field.Text("text"),

		// seq orders messages within a session; assigned monotonically by
		// the driver so ties in created_at cannot reorder a turn
		field.Int64("seq"),

		// created_at is the timestamp when the message was persisted
		field.Time("created_at").
			Default(time.Now).
			Immutable().
			Annotations(entsql.Default("CURRENT_TIMESTAMP")),
	}
}

// Indexes of the Message.
func (Message) Indexes() []ent.Index {
	return []ent.Index{
		// Composite index for the session transcript query
		index.Fields("session_id", "seq"),
	}
}

// Edges of the Message.
func (Message) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", Session.Type).
			Ref("messages").
			Field("session_id").
			Unique().
			Required(),
	}
}
