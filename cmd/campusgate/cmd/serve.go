package cmd

import (
	"github.com/aussiebroadwan/campusgate/internal/gateway/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway HTTP service",
	Long: `Starts the gateway. Configuration is read from the environment
(GATEWAY_*, API_*, PORT, LOG_LEVEL, ...).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(app.LoadConfig())
		if err != nil {
			return err
		}
		return application.Run()
	},
}
