package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundworkhq/groundwork/pkg/eventstream"
	"github.com/groundworkhq/groundwork/pkg/workflow"
)

var _ = Describe("Event", func() {
	It("marshals TurnCompletedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.TurnCompletedEvent{
			SchemaVersion:      eventstream.SchemaVersionV1,
			EventType:          eventstream.EventTypeTurnCompleted,
			EventID:            "evt_123",
			EmittedAt:          now,
			SessionID:          "sess_abc",
			UserMessageID:      "msg_user",
			AssistantMessageID: "msg_assistant",
			Intent:             string(workflow.IntentGrounded),
			Route:              workflow.NodeGenerateGrounded,
			PassageCount:       3,
			StartedAt:          now.Add(-2 * time.Second),
			CompletedAt:        now,
			DurationMs:         2000,
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("session_id"))
		Expect(got).To(HaveKey("user_message_id"))
		Expect(got).To(HaveKey("assistant_message_id"))
		Expect(got).To(HaveKey("intent"))
		Expect(got).To(HaveKey("route"))
		Expect(got).To(HaveKey("passage_count"))
		Expect(got).To(HaveKey("duration_ms"))
	})

	It("omits the assistant message id when the row was never written", func() {
		payload, err := json.Marshal(eventstream.TurnCompletedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeTurnCompleted,
		})
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())
		Expect(got).NotTo(HaveKey("assistant_message_id"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeTurnCompleted).To(Equal("groundwork.turn.completed"))
	})

	It("provides ErrNilTurnEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilTurnEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilTurnEvent).To(MatchError("nil turn event"))
	})
})
