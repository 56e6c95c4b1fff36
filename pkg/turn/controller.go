package turn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/eventstream"
	"github.com/groundworkhq/groundwork/pkg/eventstream/worker"
	"github.com/groundworkhq/groundwork/pkg/llm"
	"github.com/groundworkhq/groundwork/pkg/sse"
	"github.com/groundworkhq/groundwork/pkg/storage"
	"github.com/groundworkhq/groundwork/pkg/workflow"
)

// ErrClientDisconnected marks a run cut short because the SSE stream could
// no longer be written.
var ErrClientDisconnected = errors.New("client disconnected")

// Runner executes one turn of the workflow graph. *workflow.Graph satisfies
// it; tests substitute scripted runners.
type Runner interface {
	Stream(ctx context.Context, s *workflow.State, emit workflow.EmitFunc) error
}

// Config holds the collaborators for a Controller.
type Config struct {
	// Store persists sessions and messages.
	Store storage.Store

	// Runner executes the per-turn workflow.
	Runner Runner

	// Events is the optional async publisher pool for completed turns.
	Events *worker.Pool

	Logger *zap.Logger
}

// Controller orchestrates a single chat turn over an SSE stream.
type Controller struct {
	store  storage.Store
	runner Runner
	events *worker.Pool
	logger *zap.Logger
}

// NewController validates the configuration and creates a Controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Controller{
		store:  cfg.Store,
		runner: cfg.Runner,
		events: cfg.Events,
		logger: cfg.Logger,
	}, nil
}

// Run executes one turn for an existing session.
//
// The user message is persisted before the workflow starts; if that write
// fails the run aborts with an error event and no end event. Generator
// events are reduced to increments and streamed as update events. On
// successful completion the assistant reply is persisted (a failure there is
// reported as an error event but does not suppress the end event) and a
// single end event carries the full answer. A mid-generation failure emits
// an error event and stops without an end event or an assistant row.
func (c *Controller) Run(ctx context.Context, sessionID, userText string, out *sse.Writer) error {
	startedAt := time.Now()

	userMsg, err := c.store.AppendMessage(ctx, sessionID, llm.RoleUser, userText)
	if err != nil {
		c.logger.Error("failed to persist user message",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		c.writeEvent(out, NewErrorEvent("failed to persist message"))
		return fmt.Errorf("persisting user message: %w", err)
	}

	messages, err := c.store.ListMessages(ctx, sessionID)
	if err != nil {
		c.logger.Error("failed to load session history",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		c.writeEvent(out, NewErrorEvent("failed to load session history"))
		return fmt.Errorf("loading session history: %w", err)
	}

	history := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		history = append(history, llm.NewMessage(msg.Role, msg.Text))
	}

	state := workflow.NewState(history, userText)
	tracker := &DeltaTracker{}

	emit := func(ev workflow.Event) error {
		if !workflow.IsGeneratorNode(ev.Node) {
			return nil
		}

		increment, err := tracker.Diff(ev.State.Answer)
		if err != nil {
			return err
		}
		if increment == "" {
			return nil
		}

		if err := out.WriteData(NewUpdateEvent(increment)); err != nil {
			return fmt.Errorf("%w: %s", ErrClientDisconnected, err)
		}
		return nil
	}

	runErr := c.runner.Stream(ctx, state, emit)
	if runErr != nil {
		if errors.Is(runErr, ErrClientDisconnected) || errors.Is(runErr, context.Canceled) {
			c.persistPartial(ctx, sessionID, tracker.Full())
			return runErr
		}

		c.logger.Error("turn failed mid-run",
			zap.String("session_id", sessionID),
			zap.Error(runErr),
		)
		c.writeEvent(out, NewErrorEvent("failed to generate response"))
		return runErr
	}

	fullAnswer := tracker.Full()
	var assistantID string
	assistantMsg, err := c.store.AppendMessage(ctx, sessionID, llm.RoleAssistant, fullAnswer)
	if err != nil {
		// The client already holds the full answer; report the write
		// failure but let the run complete.
		c.logger.Error("failed to persist assistant message",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		c.writeEvent(out, NewErrorEvent("failed to persist assistant response"))
	} else {
		assistantID = assistantMsg.ID
	}

	if err := out.WriteData(NewEndEvent(fullAnswer)); err != nil {
		return fmt.Errorf("%w: %s", ErrClientDisconnected, err)
	}

	c.publishTurn(userMsg.ID, assistantID, sessionID, state, startedAt)
	return nil
}

// persistPartial saves whatever answer text reached the client before a
// disconnect. A fresh context is used because the request context is gone.
func (c *Controller) persistPartial(ctx context.Context, sessionID, partial string) {
	if partial == "" {
		return
	}

	_, err := c.store.AppendMessage(context.WithoutCancel(ctx), sessionID, llm.RoleAssistant, partial)
	if err != nil {
		c.logger.Error("failed to persist partial assistant message",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("persisted partial answer after disconnect",
		zap.String("session_id", sessionID),
		zap.Int("length", len(partial)),
	)
}

// publishTurn enqueues the completed-turn event, if a pool is configured.
func (c *Controller) publishTurn(userMsgID, assistantMsgID, sessionID string, state *workflow.State, startedAt time.Time) {
	if c.events == nil {
		return
	}

	completedAt := time.Now()
	c.events.Enqueue(&eventstream.TurnCompletedEvent{
		SchemaVersion:      eventstream.SchemaVersionV1,
		EventType:          eventstream.EventTypeTurnCompleted,
		EventID:            uuid.NewString(),
		EmittedAt:          completedAt,
		SessionID:          sessionID,
		UserMessageID:      userMsgID,
		AssistantMessageID: assistantMsgID,
		Intent:             string(state.Intent),
		Route:              string(workflow.Route(state)),
		PassageCount:       len(state.Passages),
		StartedAt:          startedAt,
		CompletedAt:        completedAt,
		DurationMs:         completedAt.Sub(startedAt).Milliseconds(),
	})
}

// writeEvent is a best-effort event write; a failure here means the client
// is gone and there is nothing further to tell it.
func (c *Controller) writeEvent(out *sse.Writer, ev StreamEvent) {
	if err := out.WriteData(ev); err != nil {
		c.logger.Debug("dropping event, stream closed", zap.Error(err))
	}
}
