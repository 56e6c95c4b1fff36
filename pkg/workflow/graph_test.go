package workflow

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/retrieval"
)

var _ = Describe("Graph", func() {
	var (
		ctx      context.Context
		client   *fakeClient
		searcher *fakeSearcher
		scorer   *fakeScorer
		events   []Event
		emit     EmitFunc
	)

	newGraph := func() *Graph {
		g, err := New(Config{
			Model:    client,
			Searcher: searcher,
			Scorer:   scorer,
			Logger:   zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return g
	}

	run := func(query string) error {
		state := NewState([]llm.Message{llm.NewMessage(llm.RoleUser, query)}, query)
		return newGraph().Stream(ctx, state, emit)
	}

	nodeOrder := func() []string {
		names := make([]string, 0, len(events))
		for _, ev := range events {
			names = append(names, ev.Node)
		}
		return names
	}

	BeforeEach(func() {
		ctx = context.Background()
		client = &fakeClient{
			classifyContent: `{"intent": "document_question"}`,
			chunks:          []string{"Hel", "lo"},
		}
		searcher = &fakeSearcher{
			results: []retrieval.Passage{{Text: "relevant text", Source: "doc.pdf"}},
		}
		scorer = &fakeScorer{score: 0.9}
		events = nil
		emit = func(ev Event) error {
			events = append(events, ev)
			return nil
		}
	})

	Describe("Route", func() {
		It("sends ungrounded intents to direct generation", func() {
			s := &State{Intent: IntentUngrounded, Passages: []retrieval.Passage{{Text: "x"}}}
			Expect(Route(s)).To(Equal(TargetUngrounded))
		})

		It("sends grounded intents with passages to grounded generation", func() {
			s := &State{Intent: IntentGrounded, Passages: []retrieval.Passage{{Text: "x"}}}
			Expect(Route(s)).To(Equal(TargetGrounded))
		})

		It("falls back to ungrounded when no passages survived", func() {
			s := &State{Intent: IntentGrounded, Passages: []retrieval.Passage{}}
			Expect(Route(s)).To(Equal(TargetUngrounded))
		})
	})

	Context("with a grounded question and relevant passages", func() {
		It("runs the full retrieval path in order", func() {
			Expect(run("what does the contract say?")).To(Succeed())
			Expect(nodeOrder()[:4]).To(Equal([]string{
				NodeClassifyIntent,
				NodeRewriteQuery,
				NodeRetrievePassages,
				NodeRerankPassages,
			}))
			for _, ev := range events[4:] {
				Expect(ev.Node).To(Equal(NodeGenerateGrounded))
			}
		})

		It("streams the cumulative answer and a final marker", func() {
			Expect(run("what does the contract say?")).To(Succeed())

			var answers []string
			for _, ev := range events {
				if IsGeneratorNode(ev.Node) {
					answers = append(answers, ev.State.Answer)
				}
			}
			Expect(answers).To(Equal([]string{"Hel", "Hello", "Hello"}))
		})

		It("grounds the generation request in the reranked passages", func() {
			Expect(run("what does the contract say?")).To(Succeed())
			Expect(client.streamRequests).To(HaveLen(1))

			messages := client.streamRequests[0].Messages
			Expect(messages[0].Content).To(Equal(GroundedPrompt))
			Expect(messages[1].Content).To(ContainSubstring("relevant text"))
			Expect(messages[1].Content).To(ContainSubstring("doc.pdf"))
		})

		It("skips the rewrite call when there is no prior conversation", func() {
			Expect(run("standalone question")).To(Succeed())
			// Only the classification call hits the model.
			Expect(client.chatRequests).To(HaveLen(1))
			Expect(searcher.queries).To(Equal([]string{"standalone question"}))
		})
	})

	Context("with an ungrounded message", func() {
		BeforeEach(func() {
			client.classifyContent = `{"intent": "general_chat"}`
		})

		It("never touches the retriever or the scorer", func() {
			Expect(run("hey, how are you?")).To(Succeed())
			Expect(searcher.calls).To(BeZero())
			Expect(scorer.calls).To(BeZero())
		})

		It("generates through the ungrounded node", func() {
			Expect(run("hey, how are you?")).To(Succeed())
			Expect(nodeOrder()).To(Equal([]string{
				NodeClassifyIntent,
				NodeGenerateUngrounded,
				NodeGenerateUngrounded,
				NodeGenerateUngrounded,
			}))
		})
	})

	Context("when classification degrades", func() {
		It("assumes grounded when the model call fails", func() {
			client.chatErr = errModelDown

			state := NewState([]llm.Message{llm.NewMessage(llm.RoleUser, "q")}, "q")
			Expect(newGraph().Stream(ctx, state, emit)).To(Succeed())
			Expect(state.Intent).To(Equal(IntentGrounded))
			Expect(searcher.calls).To(Equal(1))
		})

		It("assumes grounded on an unparseable label", func() {
			client.classifyContent = "definitely not json"
			client.chatErr = nil

			state := NewState([]llm.Message{llm.NewMessage(llm.RoleUser, "q")}, "q")
			Expect(newGraph().Stream(ctx, state, emit)).To(Succeed())
			Expect(state.Intent).To(Equal(IntentGrounded))
		})

		It("assumes grounded on an unknown label", func() {
			client.classifyContent = `{"intent": "philosophy"}`

			state := NewState([]llm.Message{llm.NewMessage(llm.RoleUser, "q")}, "q")
			Expect(newGraph().Stream(ctx, state, emit)).To(Succeed())
			Expect(state.Intent).To(Equal(IntentGrounded))
		})
	})

	Context("when retrieval or reranking degrades", func() {
		It("continues with no passages when the searcher fails", func() {
			searcher.err = errors.New("index offline")

			state := NewState([]llm.Message{llm.NewMessage(llm.RoleUser, "q")}, "q")
			Expect(newGraph().Stream(ctx, state, emit)).To(Succeed())
			Expect(state.Passages).To(BeEmpty())

			for _, ev := range events {
				if IsGeneratorNode(ev.Node) {
					Expect(ev.Node).To(Equal(NodeGenerateUngrounded))
				}
			}
		})

		It("continues with no passages when the scorer fails", func() {
			scorer.err = errors.New("reranker offline")

			state := NewState([]llm.Message{llm.NewMessage(llm.RoleUser, "q")}, "q")
			Expect(newGraph().Stream(ctx, state, emit)).To(Succeed())
			Expect(state.Passages).To(BeEmpty())
		})

		It("drops weak passages before routing", func() {
			scorer.score = 0.2

			state := NewState([]llm.Message{llm.NewMessage(llm.RoleUser, "q")}, "q")
			Expect(newGraph().Stream(ctx, state, emit)).To(Succeed())
			Expect(state.Passages).To(BeEmpty())
			Expect(Route(state)).To(Equal(TargetUngrounded))
		})

		It("passes candidates through unscored without a scorer", func() {
			scorer = nil

			state := NewState([]llm.Message{llm.NewMessage(llm.RoleUser, "q")}, "q")
			g, err := New(Config{Model: client, Searcher: searcher, Logger: zap.NewNop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Stream(ctx, state, emit)).To(Succeed())
			Expect(state.Passages).To(HaveLen(1))
		})
	})

	Context("when generation fails mid-stream", func() {
		BeforeEach(func() {
			client.streamErr = errModelDown
		})

		It("returns the error without a final marker", func() {
			err := run("q")
			Expect(err).To(MatchError(ContainSubstring("model unavailable")))

			var answers []string
			for _, ev := range events {
				if IsGeneratorNode(ev.Node) {
					answers = append(answers, ev.State.Answer)
				}
			}
			// Both increments arrived, but no duplicate marker event.
			Expect(answers).To(Equal([]string{"Hel", "Hello"}))
		})
	})

	Context("when the stream cannot start", func() {
		It("returns the error with no generator events", func() {
			client.streamStartErr = errModelDown

			err := run("q")
			Expect(err).To(MatchError(ContainSubstring("model unavailable")))
			for _, ev := range events {
				Expect(IsGeneratorNode(ev.Node)).To(BeFalse())
			}
		})
	})

	Context("when the consumer stops the run", func() {
		It("propagates the emit error immediately", func() {
			stop := errors.New("stop")
			count := 0
			emit = func(Event) error {
				count++
				if count == 2 {
					return stop
				}
				return nil
			}

			Expect(run("q")).To(MatchError(stop))
			Expect(count).To(Equal(2))
		})
	})

	Context("with a cancelled context", func() {
		It("stops before running any node", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			state := NewState(nil, "q")
			err := newGraph().Stream(cancelled, state, emit)
			Expect(err).To(MatchError(context.Canceled))
			Expect(events).To(BeEmpty())
		})
	})
})
