package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/campusgate/internal/gateway/app"
	"github.com/aussiebroadwan/campusgate/internal/gateway/service"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	credDatabase      string
	credUsername      string
	credPasswordStdin bool
	credTOTPSecret    string
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the identity provider account in the local database",
	Long: `Reads and writes the gateway's credential store directly. Secrets are sealed
with the master key from GATEWAY_MASTER_KEY_PATH or GATEWAY_MASTER_KEY, so the
same key must be configured here and for "campusgate serve".`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the username and password used to log in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if credUsername == "" {
			return errors.New("--username is required")
		}

		password, err := readPassword()
		if err != nil {
			return err
		}

		return withCredentialService(cmd.Context(), func(ctx context.Context, svc *service.CredentialService) error {
			if err := svc.Set(ctx, credUsername, password, credTOTPSecret); err != nil {
				return err
			}
			pterm.Success.Printf("Stored credentials for %s\n", credUsername)
			return nil
		})
	},
}

var credentialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCredentialService(cmd.Context(), func(ctx context.Context, svc *service.CredentialService) error {
			if err := svc.Clear(ctx); err != nil {
				return err
			}
			pterm.Success.Println("Credentials removed")
			return nil
		})
	},
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show which account is configured",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCredentialService(cmd.Context(), func(ctx context.Context, svc *service.CredentialService) error {
			status, err := svc.Status(ctx)
			if err != nil {
				return err
			}
			if !status.Configured {
				pterm.Warning.Println("No credentials configured")
				return nil
			}

			totp := "no"
			if status.HasTOTP {
				totp = "yes"
			}
			return pterm.DefaultTable.WithData(pterm.TableData{
				{"Username", status.Username},
				{"One-time codes", totp},
				{"Updated", status.UpdatedAt.Local().Format(time.DateTime)},
			}).Render()
		})
	},
}

func withCredentialService(ctx context.Context, fn func(context.Context, *service.CredentialService) error) error {
	cfg := app.LoadConfig()
	if credDatabase != "" {
		cfg.DatabaseFile = credDatabase
	}

	// An ephemeral key would make stored secrets unreadable by the server.
	sealer, err := app.LoadSealer(cfg, slog.Default(), false)
	if err != nil {
		return err
	}

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(ctx, &service.CredentialService{Store: db, Sealer: sealer})
}

func readPassword() (string, error) {
	if credPasswordStdin {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	return pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
}

func init() {
	credentialsCmd.PersistentFlags().StringVar(&credDatabase, "database", "", "SQLite database file (default GATEWAY_DATABASE_FILE)")

	credentialsSetCmd.Flags().StringVarP(&credUsername, "username", "u", "", "identity provider username")
	credentialsSetCmd.Flags().BoolVar(&credPasswordStdin, "password-stdin", false, "read the password from stdin")
	credentialsSetCmd.Flags().StringVar(&credTOTPSecret, "totp-secret", "", "base32 TOTP secret for one-time code prompts")

	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsClearCmd)
	credentialsCmd.AddCommand(credentialsShowCmd)
}
