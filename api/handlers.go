package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/storage"
)

// CreateSessionRequest is the body for POST /v1/sessions.
type CreateSessionRequest struct {
	Topic string `json:"topic"`
}

// ListSessionsResponse is the body for GET /v1/sessions.
type ListSessionsResponse struct {
	Count    int                `json:"count"`
	Sessions []*storage.Session `json:"sessions"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleCreateSession creates a new chat session.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "topic is required"})
	}

	session, err := s.store.CreateSession(c.Context(), topic)
	if err != nil {
		s.logger.Error("failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to create session"})
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// handleListSessions returns all sessions, newest first.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	sessions, err := s.store.ListSessions(c.Context())
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list sessions"})
	}

	return c.JSON(ListSessionsResponse{
		Count:    len(sessions),
		Sessions: sessions,
	})
}

// handleGetSession returns a session with its full transcript.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "id parameter required"})
	}

	session, err := s.store.GetSession(c.Context(), id)
	if err != nil {
		if errors.As(err, &storage.ErrSessionNotFound{}) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "session not found"})
		}
		s.logger.Error("failed to get session", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get session"})
	}

	return c.JSON(session)
}

// handleDeleteSession removes a session and its messages.
func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "id parameter required"})
	}

	if err := s.store.DeleteSession(c.Context(), id); err != nil {
		if errors.As(err, &storage.ErrSessionNotFound{}) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "session not found"})
		}
		s.logger.Error("failed to delete session", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to delete session"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
