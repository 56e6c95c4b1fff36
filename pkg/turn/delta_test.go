package turn

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DeltaTracker", func() {
	It("yields increments that concatenate to the final answer", func() {
		tracker := &DeltaTracker{}
		snapshots := []string{"He", "Hell", "Hello, ", "Hello, world"}

		var increments []string
		for _, snapshot := range snapshots {
			inc, err := tracker.Diff(snapshot)
			Expect(err).NotTo(HaveOccurred())
			increments = append(increments, inc)
		}

		Expect(strings.Join(increments, "")).To(Equal("Hello, world"))
		Expect(tracker.Full()).To(Equal("Hello, world"))
	})

	It("returns an empty increment for an unchanged snapshot", func() {
		tracker := &DeltaTracker{}

		_, err := tracker.Diff("same")
		Expect(err).NotTo(HaveOccurred())

		inc, err := tracker.Diff("same")
		Expect(err).NotTo(HaveOccurred())
		Expect(inc).To(BeEmpty())
		Expect(tracker.Full()).To(Equal("same"))
	})

	It("accepts the first snapshot as a whole increment", func() {
		tracker := &DeltaTracker{}

		inc, err := tracker.Diff("opening text")
		Expect(err).NotTo(HaveOccurred())
		Expect(inc).To(Equal("opening text"))
	})

	It("rejects a snapshot that rewrites earlier text", func() {
		tracker := &DeltaTracker{}

		_, err := tracker.Diff("Hello")
		Expect(err).NotTo(HaveOccurred())

		_, err = tracker.Diff("Goodbye")
		Expect(err).To(MatchError(ErrNonPrefix))
	})

	It("rejects a snapshot that shrinks", func() {
		tracker := &DeltaTracker{}

		_, err := tracker.Diff("Hello, world")
		Expect(err).NotTo(HaveOccurred())

		_, err = tracker.Diff("Hello")
		Expect(err).To(MatchError(ErrNonPrefix))
	})
})
