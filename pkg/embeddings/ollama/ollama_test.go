package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundworkhq/groundwork/pkg/vector"
)

var _ = Describe("Embedder", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		received embedRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		received = embedRequest{}
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	newEmbedder := func(handler http.HandlerFunc) *Embedder {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/embed"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			handler(w, r)
		}))
		return NewEmbedder(Config{BaseURL: server.URL, Model: "test-embed"})
	}

	It("returns the first embedding vector", func() {
		embedder := newEmbedder(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
		})

		vec, err := embedder.Embed(ctx, "termination clause")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))

		Expect(received.Model).To(Equal("test-embed"))
		Expect(received.Input).To(Equal("termination clause"))
	})

	It("wraps non-200 responses in ErrEmbedding", func() {
		embedder := newEmbedder(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("model not found"))
		})

		_, err := embedder.Embed(ctx, "anything")
		Expect(err).To(MatchError(vector.ErrEmbedding))
		Expect(err).To(MatchError(ContainSubstring("model not found")))
	})

	It("errors when the response carries no embeddings", func() {
		embedder := newEmbedder(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"embeddings":[]}`))
		})

		_, err := embedder.Embed(ctx, "anything")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("falls back to defaults for base URL and model", func() {
		embedder := NewEmbedder(Config{})
		Expect(embedder.baseURL).To(Equal(DefaultBaseURL))
		Expect(embedder.model).To(Equal(DefaultModel))
	})
})
