// Package askcmder provides the ask command: a CLI chat client against a
// running groundwork server.
package askcmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groundworkhq/groundwork/pkg/config"
	"github.com/groundworkhq/groundwork/pkg/sse"
	"github.com/groundworkhq/groundwork/pkg/storage"
	"github.com/groundworkhq/groundwork/pkg/turn"
	"github.com/groundworkhq/groundwork/pkg/utils"
)

type askCommander struct {
	apiTarget string
	sessionID string
	topic     string
}

const askLongDesc string = `Ask a question and stream the answer from a running groundwork server.

Without --session a new session is created first (using --topic or the
question itself as the topic). The answer streams to stdout as it is
generated.

Examples:
  groundwork ask "what does the contract say about termination?"
  groundwork ask --session 4f7c... "and what about renewals?"`

const askShortDesc string = "Ask a question and stream the answer"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.Load(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.run(strings.Join(args, " "))
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Groundwork API server URL")
	cmd.Flags().StringVarP(&cmder.sessionID, "session", "s", "", "Existing session ID to continue")
	cmd.Flags().StringVarP(&cmder.topic, "topic", "t", "", "Topic for a newly created session")

	return cmd
}

func (c *askCommander) run(message string) error {
	if c.sessionID == "" {
		id, err := c.createSession(message)
		if err != nil {
			return err
		}
		c.sessionID = id
		fmt.Printf("session: %s\n\n", c.sessionID)
	}

	return c.streamAnswer(message)
}

// createSession creates a new session, deriving a topic from the question
// when none was given.
func (c *askCommander) createSession(message string) (string, error) {
	topic := c.topic
	if topic == "" {
		topic = utils.Truncate(message, 64)
	}

	body, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return "", fmt.Errorf("marshaling session request: %w", err)
	}

	resp, err := http.Post(c.apiTarget+"/v1/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("creating session: status %d: %s", resp.StatusCode, string(payload))
	}

	var session storage.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decoding session response: %w", err)
	}

	return session.ID, nil
}

// streamAnswer posts the chat request and prints update events as they
// arrive until the end event.
func (c *askCommander) streamAnswer(message string) error {
	body, err := json.Marshal(map[string]string{
		"session_id": c.sessionID,
		"message":    message,
	})
	if err != nil {
		return fmt.Errorf("marshaling chat request: %w", err)
	}

	resp, err := http.Post(c.apiTarget+"/v1/chat/stream", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("starting chat stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chat stream: status %d: %s", resp.StatusCode, string(payload))
	}

	reader := sse.NewReader(resp.Body)
	for {
		ev, err := reader.Next()
		if err != nil {
			return fmt.Errorf("reading chat stream: %w", err)
		}
		if ev == nil {
			// Stream ended without an end event.
			fmt.Println()
			return nil
		}

		var event struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
			return fmt.Errorf("decoding stream event: %w", err)
		}

		switch event.Type {
		case turn.EventTypeUpdate:
			var update turn.UpdateData
			if err := json.Unmarshal(event.Data, &update); err != nil {
				return fmt.Errorf("decoding update event: %w", err)
			}
			fmt.Print(update.Content)
		case turn.EventTypeError:
			var message string
			if err := json.Unmarshal(event.Data, &message); err != nil {
				return fmt.Errorf("decoding error event: %w", err)
			}
			fmt.Println()
			return fmt.Errorf("server error: %s", message)
		case turn.EventTypeEnd:
			fmt.Println()
			return nil
		}
	}
}
