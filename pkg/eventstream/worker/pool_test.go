package worker

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/eventstream"
)

// capturePublisher records published events behind a mutex.
// Callers should "wp.Close()" to drain enqueued events before asserting.
type capturePublisher struct {
	mu     sync.Mutex
	events []*eventstream.TurnCompletedEvent
	err    error
}

func (c *capturePublisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func (c *capturePublisher) published() []*eventstream.TurnCompletedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*eventstream.TurnCompletedEvent(nil), c.events...)
}

func newTestPool(publisher *capturePublisher) *Pool {
	logger, _ := zap.NewDevelopment()

	wp, err := NewPool(&Config{
		Publisher: publisher,
		Logger:    logger,
	})
	Expect(err).NotTo(HaveOccurred())

	return wp
}

var _ = Describe("Worker Pool", func() {
	var (
		wp        *Pool
		publisher *capturePublisher
	)

	BeforeEach(func() {
		publisher = &capturePublisher{}
		wp = newTestPool(publisher)
	})

	Describe("NewPool", func() {
		It("requires a publisher", func() {
			_, err := NewPool(&Config{Logger: zap.NewNop()})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			ok := wp.Enqueue(&eventstream.TurnCompletedEvent{
				EventID:   "evt_1",
				SessionID: "sess_1",
			})
			Expect(ok).To(BeTrue())
			wp.Close()
		})

		It("rejects nil events", func() {
			Expect(wp.Enqueue(nil)).To(BeFalse())
			wp.Close()
		})

		It("drops events when the queue is full", func() {
			// A zero-worker pool would deadlock Close, so fill a tiny queue
			// faster than a blocked publisher can drain it.
			slow := &slowPublisher{
				begun:   make(chan struct{}, 1),
				release: make(chan struct{}),
			}
			small, err := NewPool(&Config{
				Publisher:  slow,
				NumWorkers: 1,
				QueueSize:  1,
				Logger:     zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())

			// First event occupies the single worker, second fills the queue.
			Expect(small.Enqueue(&eventstream.TurnCompletedEvent{EventID: "a"})).To(BeTrue())
			Eventually(slow.begun).Should(Receive())
			Expect(small.Enqueue(&eventstream.TurnCompletedEvent{EventID: "b"})).To(BeTrue())
			Expect(small.Enqueue(&eventstream.TurnCompletedEvent{EventID: "c"})).To(BeFalse())

			close(slow.release)
			small.Close()
		})
	})

	Describe("Close", func() {
		It("drains enqueued events before returning", func() {
			for range 10 {
				wp.Enqueue(&eventstream.TurnCompletedEvent{SessionID: "sess_1"})
			}
			wp.Close()

			Expect(publisher.published()).To(HaveLen(10))
		})
	})

	Describe("publish failures", func() {
		It("drops the failed event and keeps the workers running", func() {
			publisher.err = errors.New("broker unreachable")
			wp.Enqueue(&eventstream.TurnCompletedEvent{SessionID: "sess_1"})
			wp.Close()

			Expect(publisher.published()).To(BeEmpty())
		})
	})
})

// slowPublisher blocks PublishTurn until release is closed.
type slowPublisher struct {
	begun   chan struct{}
	release chan struct{}
}

func (s *slowPublisher) PublishTurn(context.Context, *eventstream.TurnCompletedEvent) error {
	select {
	case s.begun <- struct{}{}:
	default:
	}
	<-s.release
	return nil
}

func (s *slowPublisher) Close() error { return nil }
