package sse

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("frames a payload as a data-only event", func() {
		w := NewWriter(buf)

		err := w.WriteData(map[string]string{"content": "hello"})
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(Equal("data: {\"content\":\"hello\"}\n\n"))
	})

	It("writes consecutive events as separate frames", func() {
		w := NewWriter(buf)

		Expect(w.WriteData("one")).To(Succeed())
		Expect(w.WriteData("two")).To(Succeed())
		Expect(buf.String()).To(Equal("data: \"one\"\n\ndata: \"two\"\n\n"))
	})

	It("round-trips through the Reader", func() {
		w := NewWriter(buf)
		Expect(w.WriteData(map[string]int{"n": 1})).To(Succeed())
		Expect(w.WriteData(map[string]int{"n": 2})).To(Succeed())

		r := NewReader(buf)
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("{\"n\":1}"))

		ev, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("{\"n\":2}"))
	})
})
