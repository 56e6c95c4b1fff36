package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundworkhq/groundwork/pkg/llm"
)

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		received ollamaRequest
	)

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	BeforeEach(func() {
		ctx = context.Background()
		received = ollamaRequest{}
	})

	newServer := func(handler http.HandlerFunc) *Client {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			handler(w, r)
		}))
		return NewClient(Config{BaseURL: server.URL, Model: "test-model"})
	}

	Describe("Chat", func() {
		It("decodes a blocking completion", func() {
			client := newServer(func(w http.ResponseWriter, _ *http.Request) {
				payload := `{"model":"test-model","message":{"role":"assistant","content":"hi"},"done":true,"done_reason":"stop","prompt_eval_count":5,"eval_count":7,"total_duration":1200}`
				w.Write([]byte(payload))
			})

			resp, err := client.Chat(ctx, &llm.ChatRequest{
				Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hello")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.Content).To(Equal("hi"))
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.Usage.PromptTokens).To(Equal(5))
			Expect(resp.Usage.CompletionTokens).To(Equal(7))
			Expect(resp.Usage.TotalTokens).To(Equal(12))

			Expect(received.Model).To(Equal("test-model"))
			Expect(received.Stream).To(BeFalse())
		})

		It("forwards structured output mode", func() {
			client := newServer(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"message":{"role":"assistant","content":"{}"},"done":true}`))
			})

			_, err := client.Chat(ctx, &llm.ChatRequest{
				Format:   "json",
				Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "classify")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(received.Format).To(Equal("json"))
		})

		It("surfaces non-200 responses with the body", func() {
			client := newServer(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("model not loaded"))
			})

			_, err := client.Chat(ctx, &llm.ChatRequest{
				Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hello")},
			})
			Expect(err).To(MatchError(ContainSubstring("status 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	Describe("ChatStream", func() {
		It("replays NDJSON fragments and stops after the final chunk", func() {
			client := newServer(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"message":{"role":"assistant","content":"Hel"},"done":false}` + "\n"))
				w.Write([]byte(`{"message":{"role":"assistant","content":"lo"},"done":true,"done_reason":"stop"}` + "\n"))
			})

			stream, err := client.ChatStream(ctx, &llm.ChatRequest{
				Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hello")},
			})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			Expect(received.Stream).To(BeTrue())

			chunk, err := stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Content).To(Equal("Hel"))
			Expect(chunk.Done).To(BeFalse())

			chunk, err = stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Content).To(Equal("lo"))
			Expect(chunk.Done).To(BeTrue())

			chunk, err = stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk).To(BeNil())
		})

		It("skips blank lines between fragments", func() {
			client := newServer(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("\n" + `{"message":{"role":"assistant","content":"x"},"done":true}` + "\n"))
			})

			stream, err := client.ChatStream(ctx, &llm.ChatRequest{
				Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hello")},
			})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			chunk, err := stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Content).To(Equal("x"))
		})

		It("errors on malformed fragments", func() {
			client := newServer(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("not json\n"))
			})

			stream, err := client.ChatStream(ctx, &llm.ChatRequest{
				Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hello")},
			})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			_, err = stream.Next()
			Expect(err).To(MatchError(ContainSubstring("decoding stream chunk")))
		})
	})
})
