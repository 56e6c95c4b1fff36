package rerank

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundworkhq/groundwork/pkg/retrieval"
)

// fakeScorer returns fixed scores per passage text and counts calls.
type fakeScorer struct {
	scores map[string]float64
	err    error
	calls  int
}

func (f *fakeScorer) Score(_ context.Context, _, passage string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[passage], nil
}

func passages(texts ...string) []retrieval.Passage {
	out := make([]retrieval.Passage, 0, len(texts))
	for _, t := range texts {
		out = append(out, retrieval.Passage{Text: t, Source: "doc.pdf"})
	}
	return out
}

var _ = Describe("Rerank", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("sorts passages by descending score", func() {
		scorer := &fakeScorer{scores: map[string]float64{"a": 0.6, "b": 0.9, "c": 0.7}}

		kept, err := Rerank(ctx, scorer, "q", passages("a", "b", "c"), DefaultThreshold)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept).To(HaveLen(3))
		Expect(kept[0].Text).To(Equal("b"))
		Expect(kept[1].Text).To(Equal("c"))
		Expect(kept[2].Text).To(Equal("a"))
		Expect(kept[0].Score).To(Equal(0.9))
	})

	It("drops passages scoring exactly at the threshold", func() {
		scorer := &fakeScorer{scores: map[string]float64{"at": 0.5, "above": 0.50001}}

		kept, err := Rerank(ctx, scorer, "q", passages("at", "above"), DefaultThreshold)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept).To(HaveLen(1))
		Expect(kept[0].Text).To(Equal("above"))
	})

	It("keeps retrieval order for tied scores", func() {
		scorer := &fakeScorer{scores: map[string]float64{"first": 0.8, "second": 0.8, "third": 0.8}}

		kept, err := Rerank(ctx, scorer, "q", passages("first", "second", "third"), DefaultThreshold)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept[0].Text).To(Equal("first"))
		Expect(kept[1].Text).To(Equal("second"))
		Expect(kept[2].Text).To(Equal("third"))
	})

	It("returns an empty result when everything scores low", func() {
		scorer := &fakeScorer{scores: map[string]float64{"a": 0.1, "b": 0.2}}

		kept, err := Rerank(ctx, scorer, "q", passages("a", "b"), DefaultThreshold)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept).To(BeEmpty())
	})

	It("short-circuits on empty input without invoking the scorer", func() {
		scorer := &fakeScorer{}

		kept, err := Rerank(ctx, scorer, "q", nil, DefaultThreshold)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept).To(BeEmpty())
		Expect(scorer.calls).To(BeZero())
	})

	It("propagates scorer failures", func() {
		scorer := &fakeScorer{err: errors.New("scorer down")}

		_, err := Rerank(ctx, scorer, "q", passages("a"), DefaultThreshold)
		Expect(err).To(MatchError("scorer down"))
	})
})
