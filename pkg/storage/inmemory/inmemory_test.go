package inmemory

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundworkhq/groundwork/pkg/storage"
)

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = NewStore()
	})

	Describe("sessions", func() {
		It("creates and fetches a session", func() {
			created, err := store.CreateSession(ctx, "contract questions")
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeEmpty())

			fetched, err := store.GetSession(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Topic).To(Equal("contract questions"))
			Expect(fetched.Messages).To(BeEmpty())
		})

		It("returns a typed not-found error for unknown sessions", func() {
			_, err := store.GetSession(ctx, "nope")
			Expect(err).To(MatchError(storage.ErrSessionNotFound{ID: "nope"}))
		})

		It("deletes a session and its messages", func() {
			session, err := store.CreateSession(ctx, "t")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.AppendMessage(ctx, session.ID, "user", "hi")
			Expect(err).NotTo(HaveOccurred())

			Expect(store.DeleteSession(ctx, session.ID)).To(Succeed())

			_, err = store.GetSession(ctx, session.ID)
			Expect(err).To(HaveOccurred())

			messages, err := store.ListMessages(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(BeEmpty())
		})

		It("rejects deleting an unknown session", func() {
			Expect(store.DeleteSession(ctx, "nope")).To(MatchError(storage.ErrSessionNotFound{ID: "nope"}))
		})
	})

	Describe("messages", func() {
		var sessionID string

		BeforeEach(func() {
			session, err := store.CreateSession(ctx, "t")
			Expect(err).NotTo(HaveOccurred())
			sessionID = session.ID
		})

		It("preserves append order", func() {
			for _, text := range []string{"one", "two", "three"} {
				_, err := store.AppendMessage(ctx, sessionID, "user", text)
				Expect(err).NotTo(HaveOccurred())
			}

			messages, err := store.ListMessages(ctx, sessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(3))
			Expect(messages[0].Text).To(Equal("one"))
			Expect(messages[1].Text).To(Equal("two"))
			Expect(messages[2].Text).To(Equal("three"))
		})

		It("includes messages in GetSession", func() {
			_, err := store.AppendMessage(ctx, sessionID, "user", "q")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.AppendMessage(ctx, sessionID, "assistant", "a")
			Expect(err).NotTo(HaveOccurred())

			session, err := store.GetSession(ctx, sessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Messages).To(HaveLen(2))
			Expect(session.Messages[0].Role).To(Equal("user"))
			Expect(session.Messages[1].Role).To(Equal("assistant"))
		})

		It("rejects appending to an unknown session", func() {
			_, err := store.AppendMessage(ctx, "nope", "user", "hi")
			Expect(err).To(MatchError(storage.ErrSessionNotFound{ID: "nope"}))
		})

		It("returns copies that do not alias internal state", func() {
			_, err := store.AppendMessage(ctx, sessionID, "user", "original")
			Expect(err).NotTo(HaveOccurred())

			messages, err := store.ListMessages(ctx, sessionID)
			Expect(err).NotTo(HaveOccurred())
			messages[0].Text = "mutated"

			again, err := store.ListMessages(ctx, sessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again[0].Text).To(Equal("original"))
		})
	})
})
