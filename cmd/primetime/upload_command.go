package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"primetime/internal/api"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var platformFlag string
	var noForce bool

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Run a publishing cycle now",
		Long:  "Asks the daemon to run a publishing cycle immediately. By default the cycle is forced, bypassing the publishing window; the daily quota still applies.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			platformName := strings.ToLower(strings.TrimSpace(platformFlag))
			if platformName == "" {
				enabled := cfg.EnabledPlatforms()
				if len(enabled) == 0 {
					return fmt.Errorf("no platforms are enabled")
				}
				platformName = enabled[0]
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			cycle, err := client.Cycle(cmd.Context(), platformName, !noForce)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCycle(cycle))
			return nil
		},
	}
	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Platform to publish to (default: first enabled)")
	cmd.Flags().BoolVar(&noForce, "no-force", false, "Respect the publishing window instead of forcing")
	return cmd
}

func renderCycle(cycle api.CycleResponse) string {
	var builder strings.Builder
	if len(cycle.Results) == 0 {
		switch {
		case cycle.Rescheduled > 0:
			fmt.Fprintf(&builder, "Daily quota for %s is spent; %d item(s) moved to tomorrow.\n", cycle.Platform, cycle.Rescheduled)
		case !cycle.InWindow:
			fmt.Fprintf(&builder, "No publishing window is open for %s right now.\n", cycle.Platform)
		default:
			fmt.Fprintf(&builder, "Nothing eligible to upload for %s.\n", cycle.Platform)
		}
		return builder.String()
	}

	fmt.Fprintf(&builder, "Cycle for %s: %d uploaded, %d failed.\n", cycle.Platform, cycle.Uploads, cycle.Failures)
	rows := make([][]string, 0, len(cycle.Results))
	for _, result := range cycle.Results {
		outcome := result.PublishedLink
		if !result.Success {
			outcome = "failed: " + result.Error
		}
		rows = append(rows, []string{fmt.Sprintf("%d", result.ID), result.Filename, outcome})
	}
	builder.WriteString(renderTable([]string{"ID", "FILENAME", "RESULT"}, rows, 1))
	builder.WriteString("\n")
	if cycle.Rescheduled > 0 {
		fmt.Fprintf(&builder, "%d item(s) moved to tomorrow.\n", cycle.Rescheduled)
	}
	return builder.String()
}
