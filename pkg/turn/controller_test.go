package turn

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/eventstream"
	eventworker "github.com/groundworkhq/groundwork/pkg/eventstream/worker"
	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/retrieval"
	"github.com/groundworkhq/groundwork/pkg/sse"
	"github.com/groundworkhq/groundwork/pkg/storage"
	"github.com/groundworkhq/groundwork/pkg/storage/inmemory"
	"github.com/groundworkhq/groundwork/pkg/workflow"
)

// fakeRunner plays back cumulative answer snapshots through the emit
// callback, then optionally fails.
type fakeRunner struct {
	node      string
	snapshots []string
	marker    bool
	err       error

	sawHistory []llm.Message
}

func (r *fakeRunner) Stream(_ context.Context, s *workflow.State, emit workflow.EmitFunc) error {
	r.sawHistory = s.History
	s.Intent = workflow.IntentGrounded
	s.Passages = []retrieval.Passage{{Text: "evidence", Source: "doc.pdf", Score: 0.9}}

	node := r.node
	if node == "" {
		node = workflow.NodeGenerateGrounded
	}

	for _, snapshot := range r.snapshots {
		s.Answer = snapshot
		if err := emit(workflow.Event{Node: node, State: *s}); err != nil {
			return err
		}
	}
	if r.err != nil {
		return r.err
	}
	if r.marker {
		if err := emit(workflow.Event{Node: node, State: *s}); err != nil {
			return err
		}
	}
	return nil
}

// flakyStore wraps a real store and fails AppendMessage for chosen roles.
type flakyStore struct {
	storage.Store
	failRoles map[string]bool
}

func (s *flakyStore) AppendMessage(ctx context.Context, sessionID, role, text string) (*storage.Message, error) {
	if s.failRoles[role] {
		return nil, errors.New("database gone")
	}
	return s.Store.AppendMessage(ctx, sessionID, role, text)
}

// capturePublisher records published turn events.
type capturePublisher struct {
	mu     sync.Mutex
	events []*eventstream.TurnCompletedEvent
}

func (p *capturePublisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

// failAfterWriter passes writes through until the limit, then errors.
type failAfterWriter struct {
	writes int
	limit  int
	buf    bytes.Buffer
}

func (w *failAfterWriter) Write(p []byte) (int, error) {
	if w.writes >= w.limit {
		return 0, errors.New("broken pipe")
	}
	w.writes++
	return w.buf.Write(p)
}

// decodeEvents parses the SSE buffer back into typed stream events.
func decodeEvents(raw string) []sse.Event {
	reader := sse.NewReader(strings.NewReader(raw))
	var events []sse.Event
	for {
		ev, err := reader.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return events
		}
		events = append(events, *ev)
	}
}

var _ = Describe("Controller", func() {
	var (
		ctx        context.Context
		store      *inmemory.Store
		runner     *fakeRunner
		buf        *bytes.Buffer
		out        *sse.Writer
		sessionID  string
		controller *Controller
	)

	newController := func(s storage.Store, events *eventworker.Pool) *Controller {
		c, err := NewController(Config{
			Store:  s,
			Runner: runner,
			Events: events,
			Logger: zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewStore()
		runner = &fakeRunner{snapshots: []string{"Hel", "Hello"}, marker: true}
		buf = &bytes.Buffer{}
		out = sse.NewWriter(buf)

		session, err := store.CreateSession(ctx, "test docs")
		Expect(err).NotTo(HaveOccurred())
		sessionID = session.ID

		controller = newController(store, nil)
	})

	Context("on a successful turn", func() {
		It("streams increments, then the end event", func() {
			Expect(controller.Run(ctx, sessionID, "question", out)).To(Succeed())

			events := decodeEvents(buf.String())
			Expect(events).To(HaveLen(3))
			Expect(events[0].Data).To(MatchJSON(`{"type":"update","data":{"content":"Hel"}}`))
			Expect(events[1].Data).To(MatchJSON(`{"type":"update","data":{"content":"lo"}}`))
			Expect(events[2].Data).To(MatchJSON(`{"type":"end","data":{"full_response":"Hello"}}`))
		})

		It("persists exactly one user and one assistant message", func() {
			Expect(controller.Run(ctx, sessionID, "question", out)).To(Succeed())

			messages, err := store.ListMessages(ctx, sessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(2))
			Expect(messages[0].Role).To(Equal(llm.RoleUser))
			Expect(messages[0].Text).To(Equal("question"))
			Expect(messages[1].Role).To(Equal(llm.RoleAssistant))
			Expect(messages[1].Text).To(Equal("Hello"))
		})

		It("hands the runner the history including the new user message", func() {
			_, err := store.AppendMessage(ctx, sessionID, llm.RoleUser, "earlier question")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.AppendMessage(ctx, sessionID, llm.RoleAssistant, "earlier answer")
			Expect(err).NotTo(HaveOccurred())

			Expect(controller.Run(ctx, sessionID, "follow-up", out)).To(Succeed())
			Expect(runner.sawHistory).To(HaveLen(3))
			Expect(runner.sawHistory[2].Content).To(Equal("follow-up"))
		})

		It("emits no update for the no-increment marker event", func() {
			runner.snapshots = []string{"full answer"}
			runner.marker = true

			Expect(controller.Run(ctx, sessionID, "q", out)).To(Succeed())

			events := decodeEvents(buf.String())
			Expect(events).To(HaveLen(2))
			Expect(events[0].Data).To(MatchJSON(`{"type":"update","data":{"content":"full answer"}}`))
			Expect(events[1].Data).To(MatchJSON(`{"type":"end","data":{"full_response":"full answer"}}`))
		})

		It("completes an empty answer with an end event and an empty assistant row", func() {
			runner.snapshots = nil
			runner.marker = true

			Expect(controller.Run(ctx, sessionID, "q", out)).To(Succeed())

			events := decodeEvents(buf.String())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(MatchJSON(`{"type":"end","data":{"full_response":""}}`))

			messages, err := store.ListMessages(ctx, sessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(2))
			Expect(messages[1].Text).To(BeEmpty())
		})
	})

	Context("when persisting the user message fails", func() {
		It("emits an error event and aborts without an end event", func() {
			flaky := &flakyStore{Store: store, failRoles: map[string]bool{llm.RoleUser: true}}
			controller = newController(flaky, nil)

			err := controller.Run(ctx, sessionID, "question", out)
			Expect(err).To(HaveOccurred())

			events := decodeEvents(buf.String())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(MatchJSON(`{"type":"error","data":"failed to persist message"}`))

			messages, lerr := store.ListMessages(ctx, sessionID)
			Expect(lerr).NotTo(HaveOccurred())
			Expect(messages).To(BeEmpty())
		})
	})

	Context("when persisting the assistant message fails", func() {
		It("reports the error but still ends the stream", func() {
			flaky := &flakyStore{Store: store, failRoles: map[string]bool{llm.RoleAssistant: true}}
			controller = newController(flaky, nil)

			Expect(controller.Run(ctx, sessionID, "question", out)).To(Succeed())

			events := decodeEvents(buf.String())
			Expect(events).To(HaveLen(4))
			Expect(events[2].Data).To(MatchJSON(`{"type":"error","data":"failed to persist assistant response"}`))
			Expect(events[3].Data).To(MatchJSON(`{"type":"end","data":{"full_response":"Hello"}}`))

			messages, err := store.ListMessages(ctx, sessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(1))
			Expect(messages[0].Role).To(Equal(llm.RoleUser))
		})
	})

	Context("when generation fails mid-stream", func() {
		It("emits streamed text, then an error, and never an end event", func() {
			runner.err = errors.New("model unavailable")
			runner.marker = false

			err := controller.Run(ctx, sessionID, "question", out)
			Expect(err).To(MatchError(ContainSubstring("model unavailable")))

			events := decodeEvents(buf.String())
			Expect(events).To(HaveLen(3))
			Expect(events[0].Data).To(MatchJSON(`{"type":"update","data":{"content":"Hel"}}`))
			Expect(events[1].Data).To(MatchJSON(`{"type":"update","data":{"content":"lo"}}`))
			Expect(events[2].Data).To(MatchJSON(`{"type":"error","data":"failed to generate response"}`))

			messages, lerr := store.ListMessages(ctx, sessionID)
			Expect(lerr).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(1))
			Expect(messages[0].Role).To(Equal(llm.RoleUser))
		})
	})

	Context("when a snapshot violates monotonic append", func() {
		It("aborts the run with ErrNonPrefix", func() {
			runner.snapshots = []string{"Hello", "Goodbye"}

			err := controller.Run(ctx, sessionID, "question", out)
			Expect(err).To(MatchError(ErrNonPrefix))

			events := decodeEvents(buf.String())
			// The first increment went out before the violation.
			Expect(events[0].Data).To(MatchJSON(`{"type":"update","data":{"content":"Hello"}}`))
			for _, ev := range events {
				Expect(ev.Data).NotTo(ContainSubstring(`"end"`))
			}
		})
	})

	Context("when the client disconnects mid-stream", func() {
		It("stops and persists the accumulated answer", func() {
			failing := &failAfterWriter{limit: 1}
			out = sse.NewWriter(failing)

			err := controller.Run(ctx, sessionID, "question", out)
			Expect(err).To(MatchError(ErrClientDisconnected))

			messages, lerr := store.ListMessages(ctx, sessionID)
			Expect(lerr).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(2))
			Expect(messages[1].Role).To(Equal(llm.RoleAssistant))
			Expect(messages[1].Text).To(Equal("Hello"))
		})
	})

	Context("with an event stream configured", func() {
		It("publishes one completed-turn event", func() {
			publisher := &capturePublisher{}
			pool, err := eventworker.NewPool(&eventworker.Config{
				Publisher: publisher,
				Logger:    zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())

			controller = newController(store, pool)
			Expect(controller.Run(ctx, sessionID, "question", out)).To(Succeed())
			pool.Close()

			Expect(publisher.events).To(HaveLen(1))
			event := publisher.events[0]
			Expect(event.EventType).To(Equal(eventstream.EventTypeTurnCompleted))
			Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
			Expect(event.SessionID).To(Equal(sessionID))
			Expect(event.UserMessageID).NotTo(BeEmpty())
			Expect(event.AssistantMessageID).NotTo(BeEmpty())
			Expect(event.Route).To(Equal(string(workflow.TargetGrounded)))
			Expect(event.PassageCount).To(Equal(1))
		})
	})
})

var _ = Describe("StreamEvent payloads", func() {
	It("shapes the update event", func() {
		buf := &bytes.Buffer{}
		Expect(sse.NewWriter(buf).WriteData(NewUpdateEvent("abc"))).To(Succeed())
		Expect(buf.String()).To(Equal("data: {\"type\":\"update\",\"data\":{\"content\":\"abc\"}}\n\n"))
	})

	It("shapes the error event with a bare string payload", func() {
		buf := &bytes.Buffer{}
		Expect(sse.NewWriter(buf).WriteData(NewErrorEvent("boom"))).To(Succeed())
		Expect(buf.String()).To(Equal("data: {\"type\":\"error\",\"data\":\"boom\"}\n\n"))
	})

	It("shapes the end event", func() {
		buf := &bytes.Buffer{}
		Expect(sse.NewWriter(buf).WriteData(NewEndEvent("full"))).To(Succeed())
		Expect(buf.String()).To(Equal("data: {\"type\":\"end\",\"data\":{\"full_response\":\"full\"}}\n\n"))
	})
})

var _ io.Writer = (*failAfterWriter)(nil)
var _ storage.Store = (*flakyStore)(nil)
var _ eventstream.Publisher = (*capturePublisher)(nil)
