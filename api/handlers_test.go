package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/storage"
	"github.com/groundworkhq/groundwork/pkg/storage/inmemory"
	"github.com/groundworkhq/groundwork/pkg/turn"
	"github.com/groundworkhq/groundwork/pkg/workflow"
)

// echoRunner answers every turn with a fixed streamed reply.
type echoRunner struct{}

func (echoRunner) Stream(_ context.Context, s *workflow.State, emit workflow.EmitFunc) error {
	s.Intent = workflow.IntentUngrounded
	for _, snapshot := range []string{"echo: ", "echo: " + s.OriginalQuery} {
		s.Answer = snapshot
		if err := emit(workflow.Event{Node: workflow.NodeGenerateUngrounded, State: *s}); err != nil {
			return err
		}
	}
	return emit(workflow.Event{Node: workflow.NodeGenerateUngrounded, State: *s})
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

var _ = Describe("Server", func() {
	var (
		server *Server
		store  storage.Store
	)

	BeforeEach(func() {
		store = inmemory.NewStore()
		controller, err := turn.NewController(turn.Config{
			Store:  store,
			Runner: echoRunner{},
			Logger: zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		server = NewServer(Config{ListenAddr: ":0"}, store, controller, zap.NewNop())
	})

	Describe("GET /ping", func() {
		It("responds with pong", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(Equal(`"pong"`))
		})
	})

	Describe("POST /v1/sessions", func() {
		It("creates a session", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/sessions", map[string]string{"topic": "contracts"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var session storage.Session
			Expect(json.NewDecoder(resp.Body).Decode(&session)).To(Succeed())
			Expect(session.ID).NotTo(BeEmpty())
			Expect(session.Topic).To(Equal("contracts"))
		})

		It("rejects a missing topic", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/sessions", map[string]string{}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a blank topic", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/sessions", map[string]string{"topic": "   "}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("session retrieval", func() {
		var sessionID string

		BeforeEach(func() {
			session, err := store.CreateSession(context.Background(), "stored")
			Expect(err).NotTo(HaveOccurred())
			sessionID = session.ID
		})

		It("lists sessions", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var list ListSessionsResponse
			Expect(json.NewDecoder(resp.Body).Decode(&list)).To(Succeed())
			Expect(list.Count).To(Equal(1))
			Expect(list.Sessions[0].ID).To(Equal(sessionID))
		})

		It("fetches a session with its messages", func() {
			_, err := store.AppendMessage(context.Background(), sessionID, "user", "hello")
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID, nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var session storage.Session
			Expect(json.NewDecoder(resp.Body).Decode(&session)).To(Succeed())
			Expect(session.Messages).To(HaveLen(1))
			Expect(session.Messages[0].Text).To(Equal("hello"))
		})

		It("returns 404 for an unknown session", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/sessions/unknown", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("deletes a session", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+sessionID, nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			resp, err = server.app.Test(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID, nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("returns 404 when deleting an unknown session", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodDelete, "/v1/sessions/unknown", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("POST /v1/chat/stream", func() {
		var sessionID string

		BeforeEach(func() {
			session, err := store.CreateSession(context.Background(), "chat")
			Expect(err).NotTo(HaveOccurred())
			sessionID = session.ID
		})

		It("returns 404 before streaming for an unknown session", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/chat/stream", map[string]string{
				"session_id": "unknown",
				"message":    "hi",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("rejects a missing session id", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/chat/stream", map[string]string{
				"message": "hi",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a blank message", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/chat/stream", map[string]string{
				"session_id": sessionID,
				"message":    "  ",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("streams SSE update and end events", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/v1/chat/stream", map[string]string{
				"session_id": sessionID,
				"message":    "hello",
			}), 5000)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			raw := string(body)
			Expect(raw).To(ContainSubstring(`data: {"type":"update","data":{"content":"echo: "}}`))
			Expect(raw).To(ContainSubstring(`data: {"type":"update","data":{"content":"hello"}}`))
			Expect(raw).To(ContainSubstring(`{"type":"end","data":{"full_response":"echo: hello"}}`))
		})
	})
})
