// Package groundworkcmder
package groundworkcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/groundworkhq/groundwork/cmd/groundwork/ask"
	sessionscmder "github.com/groundworkhq/groundwork/cmd/groundwork/sessions"
	servecmder "github.com/groundworkhq/groundwork/cmd/groundwork/serve"
	versioncmder "github.com/groundworkhq/groundwork/cmd/version"
)

const groundworkLongDesc string = `Groundwork is a retrieval-grounded chat service for your documents.

Run the service using:
  groundwork serve     Run the API server

Talk to a running server:
  groundwork ask       Ask a question and stream the answer
  groundwork sessions  List stored chat sessions`

const groundworkShortDesc string = "Groundwork - Document Chat"

func NewGroundworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groundwork",
		Short: groundworkShortDesc,
		Long:  groundworkLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing config.toml")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(sessionscmder.NewSessionsCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
