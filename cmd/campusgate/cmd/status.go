package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusAttempts int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-host sessions and recent logins",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		client := apiClient()

		health, err := client.Liveness(ctx)
		if err != nil {
			return fmt.Errorf("gateway unreachable: %w", err)
		}
		pterm.Info.Printf("%s (%s, up %s)\n", serverURL, health.Version, health.Uptime)

		sessions, err := client.Sessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		pterm.DefaultSection.Println("Sessions")
		if len(sessions) == 0 {
			pterm.Info.Println("No host has been logged in to yet")
		} else if err := pterm.DefaultTable.WithHasHeader().WithData(sessionRows(sessions, time.Now())).Render(); err != nil {
			return err
		}

		if statusAttempts <= 0 {
			return nil
		}

		attempts, err := client.LoginAttempts(ctx, statusAttempts)
		if gatesdk.IsCode(err, gatesdk.ErrorCodeInsufficientScope) {
			pterm.Warning.Println("Login attempts need the campus:admin scope")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list login attempts: %w", err)
		}

		pterm.DefaultSection.Println("Recent logins")
		if len(attempts) == 0 {
			pterm.Info.Println("No login attempts recorded")
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithData(attemptRows(attempts)).Render()
	},
}

func sessionRows(sessions []gatesdk.SessionInfo, now time.Time) pterm.TableData {
	rows := pterm.TableData{{"HOST", "STATE", "LOGGED IN", "EXPIRES IN", "PENDING"}}
	for _, s := range sessions {
		state := pterm.Green("valid")
		expires := s.ExpiresAt.Sub(now).Round(time.Second).String()
		if !s.Valid {
			state = pterm.Red("expired")
			expires = "-"
		}
		rows = append(rows, []string{
			s.Host,
			state,
			s.LastAuthenticatedAt.Local().Format(time.DateTime),
			expires,
			strconv.Itoa(s.Pending),
		})
	}
	return rows
}

func attemptRows(attempts []gatesdk.LoginAttempt) pterm.TableData {
	rows := pterm.TableData{{"STARTED", "HOST", "TRIGGER", "OUTCOME", "DURATION", "ERROR"}}
	for _, a := range attempts {
		outcome := a.Outcome
		if outcome == "success" {
			outcome = pterm.Green(outcome)
		} else {
			outcome = pterm.Red(outcome)
		}
		rows = append(rows, []string{
			a.StartedAt.Local().Format(time.DateTime),
			a.Host,
			a.Trigger,
			outcome,
			(time.Duration(a.DurationMS) * time.Millisecond).String(),
			a.Error,
		})
	}
	return rows
}

func init() {
	statusCmd.Flags().IntVar(&statusAttempts, "attempts", 10, "number of recent login attempts to show (0 hides them)")
}
