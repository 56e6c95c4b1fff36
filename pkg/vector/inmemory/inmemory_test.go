package inmemory

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundworkhq/groundwork/pkg/vector"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = NewDriver()

		err := driver.Add(ctx, []vector.Document{
			{ID: "x", Text: "east", Source: "a.pdf", Embedding: []float32{1, 0}},
			{ID: "y", Text: "north", Source: "a.pdf", Embedding: []float32{0, 1}},
			{ID: "xy", Text: "northeast", Source: "b.pdf", Embedding: []float32{1, 1}},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("ranks by cosine similarity", func() {
		results, err := driver.Query(ctx, []float32{1, 0}, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].ID).To(Equal("x"))
		Expect(results[1].ID).To(Equal("xy"))
		Expect(results[2].ID).To(Equal("y"))
	})

	It("caps results at topK", func() {
		results, err := driver.Query(ctx, []float32{1, 0}, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].ID).To(Equal("x"))
	})

	It("replaces documents with the same ID", func() {
		err := driver.Add(ctx, []vector.Document{
			{ID: "x", Text: "replaced", Embedding: []float32{0, 1}},
		})
		Expect(err).NotTo(HaveOccurred())

		results, err := driver.Query(ctx, []float32{0, 1}, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].ID).To(Equal("x"))
		Expect(results[0].Text).To(Equal("replaced"))
	})

	It("deletes documents by ID", func() {
		Expect(driver.Delete(ctx, []string{"x", "xy"})).To(Succeed())

		results, err := driver.Query(ctx, []float32{1, 0}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].ID).To(Equal("y"))
	})
})
