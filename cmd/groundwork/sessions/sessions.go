// Package sessionscmder provides the sessions command for listing stored
// chat sessions on a running groundwork server.
package sessionscmder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/groundworkhq/groundwork/pkg/config"
	"github.com/groundworkhq/groundwork/pkg/storage"
	"github.com/groundworkhq/groundwork/pkg/utils"
)

type sessionsCommander struct {
	apiTarget string
}

const sessionsShortDesc string = "List stored chat sessions"

func NewSessionsCmd() *cobra.Command {
	cmder := &sessionsCommander{}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: sessionsShortDesc,
		Long:  "Lists the chat sessions stored on a running groundwork server, newest first.",
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
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Groundwork API server URL")

	return cmd
}

func (c *sessionsCommander) run() error {
	resp, err := http.Get(c.apiTarget + "/v1/sessions")
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("listing sessions: status %d: %s", resp.StatusCode, string(payload))
	}

	var list struct {
		Count    int                `json:"count"`
		Sessions []*storage.Session `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("decoding sessions response: %w", err)
	}

	if list.Count == 0 {
		fmt.Println("no sessions")
		return nil
	}

	for _, session := range list.Sessions {
		fmt.Printf("%s  %s  %s\n",
			session.ID,
			session.CreatedAt.Format("2006-01-02 15:04"),
			utils.Truncate(session.Topic, 48),
		)
	}

	return nil
}
