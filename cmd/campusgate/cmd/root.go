package cmd

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
)

var rootCmd = &cobra.Command{
	Use:   "campusgate",
	Short: "Authenticated access to systems behind a central campus login",
	Long: `campusgate keeps one login session per host behind a central SSO login page.
Run "campusgate serve" to start the gateway; the other commands talk to a running
gateway or manage its local credential store.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("CAMPUSGATE_SERVER", "http://localhost:8080"),
		"campusgate server URL (also CAMPUSGATE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CAMPUSGATE_TOKEN"),
		"bearer token for the API (also CAMPUSGATE_TOKEN)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(credentialsCmd)
	rootCmd.AddCommand(keygenCmd)
}

func apiClient() *gatesdk.Client {
	return gatesdk.NewClient(serverURL).WithToken(token)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
