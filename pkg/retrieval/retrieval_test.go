package retrieval

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/vector"
	"github.com/groundworkhq/groundwork/pkg/vector/inmemory"
)

// fakeEmbedder maps known texts to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

func (f *fakeEmbedder) Close() error { return nil }

var _ = Describe("VectorSearcher", func() {
	var (
		ctx      context.Context
		driver   *inmemory.Driver
		embedder *fakeEmbedder
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		embedder = &fakeEmbedder{vectors: map[string][]float32{
			"termination clause": {1, 0},
		}}

		err := driver.Add(ctx, []vector.Document{
			{ID: "1", Text: "termination requires 30 days notice", Source: "contract.pdf", Embedding: []float32{1, 0}},
			{ID: "2", Text: "renewal is automatic", Source: "contract.pdf", Embedding: []float32{0, 1}},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns the most similar passages with source labels", func() {
		searcher := NewVectorSearcher(embedder, driver, zap.NewNop())

		passages, err := searcher.Search(ctx, "termination clause", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(passages).To(HaveLen(1))
		Expect(passages[0].Text).To(Equal("termination requires 30 days notice"))
		Expect(passages[0].Source).To(Equal("contract.pdf"))
		Expect(passages[0].Score).To(BeNumerically(">", 0))
	})

	It("returns empty results without a configured index", func() {
		searcher := NewVectorSearcher(nil, nil, zap.NewNop())

		passages, err := searcher.Search(ctx, "anything", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(passages).To(BeEmpty())
	})

	It("propagates embedding failures", func() {
		embedder.err = errors.New("embedder down")
		searcher := NewVectorSearcher(embedder, driver, zap.NewNop())

		_, err := searcher.Search(ctx, "termination clause", 1)
		Expect(err).To(MatchError("embedder down"))
	})
})
