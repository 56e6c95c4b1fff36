package api

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/sse"
	"github.com/groundworkhq/groundwork/pkg/storage"
	"github.com/groundworkhq/groundwork/pkg/turn"
)

// ChatStreamRequest is the body for POST /v1/chat/stream.
type ChatStreamRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleChatStream runs one chat turn and streams the answer as SSE.
//
// Session existence is checked before any streaming starts so an unknown
// session gets a plain 404 instead of a broken stream.
func (s *Server) handleChatStream(c *fiber.Ctx) error {
	var req ChatStreamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "session_id is required"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "message is required"})
	}

	if _, err := s.store.GetSession(c.Context(), req.SessionID); err != nil {
		if errors.As(err, &storage.ErrSessionNotFound{}) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "session not found"})
		}
		s.logger.Error("failed to validate session", zap.String("id", req.SessionID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to validate session"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// With io.Pipe, pw.Write blocks until the reader consumes the data, so
	// updates reach the client as they are produced instead of buffering.
	pr, pw := io.Pipe()

	// Use context.Background() instead of c.Context() because fasthttp
	// recycles the request context once the handler returns, while the turn
	// keeps running in the background goroutine. Client disconnects surface
	// as pipe write errors instead.
	go func() {
		defer pw.Close()

		writer := sse.NewWriter(pw)
		err := s.controller.Run(context.Background(), req.SessionID, req.Message, writer)
		if err != nil && !errors.Is(err, turn.ErrClientDisconnected) {
			s.logger.Error("chat turn failed",
				zap.String("session_id", req.SessionID),
				zap.Error(err),
			)
		}
	}()

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}
