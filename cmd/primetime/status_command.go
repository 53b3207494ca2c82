package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"primetime/internal/api"
	"primetime/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, queue, and quota status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				// The daemon may simply not be running; fall back to the
				// queue database for a partial picture.
				fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
				fmt.Fprintln(out, renderStatusLine("Running", statusError, "daemon unreachable: "+err.Error(), colorize))
				return ctx.withStore(func(store *queue.Store) error {
					stats, err := store.Stats(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintln(out, renderSectionHeader("Queue", colorize))
					fmt.Fprint(out, renderQueueCounts(stats))
					return nil
				})
			}

			fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
			fmt.Fprintln(out, renderStatusLine("Running", statusOK, "pid "+strconv.Itoa(status.PID), colorize))
			dbKind, dbMessage := statusOK, status.Database.Path
			if !status.Database.Healthy {
				dbKind = statusError
				dbMessage = status.Database.Error
			}
			fmt.Fprintln(out, renderStatusLine("Database", dbKind, dbMessage, colorize))

			fmt.Fprintln(out, renderSectionHeader("Queue", colorize))
			fmt.Fprint(out, renderQueueCounts(queue.HealthSummary{
				Total:     status.Queue.Total,
				Pending:   status.Queue.Pending,
				Scheduled: status.Queue.Scheduled,
				Uploading: status.Queue.Uploading,
				Uploaded:  status.Queue.Uploaded,
				Failed:    status.Queue.Failed,
			}))

			fmt.Fprintln(out, renderSectionHeader("Publishing", colorize))
			for _, platform := range status.Platforms {
				if platform.ConfigError != "" {
					fmt.Fprintln(out, renderStatusLine(platform.Platform, statusError, platform.ConfigError, colorize))
					continue
				}
				fmt.Fprintln(out, renderStatusLine(platform.Platform, quotaKind(platform),
					fmt.Sprintf("%d/%d used today, %d left", platform.Used, platform.Quota, platform.Remaining), colorize))
			}
			if status.InWindow {
				fmt.Fprintln(out, renderStatusLine("Window", statusOK, "open now", colorize))
			} else if !status.NextWindow.IsZero() {
				fmt.Fprintln(out, renderStatusLine("Window", statusInfo,
					"next at "+status.NextWindow.Format("15:04")+" ("+status.Timezone+")", colorize))
			}
			return nil
		},
	}
}

func quotaKind(platform api.PlatformStatus) statusKind {
	if platform.Remaining <= 0 {
		return statusWarn
	}
	return statusOK
}

func renderQueueCounts(stats queue.HealthSummary) string {
	var builder strings.Builder
	rows := []struct {
		label string
		count int
	}{
		{"total", stats.Total},
		{"pending", stats.Pending},
		{"scheduled", stats.Scheduled},
		{"uploading", stats.Uploading},
		{"uploaded", stats.Uploaded},
		{"failed", stats.Failed},
	}
	for _, row := range rows {
		fmt.Fprintf(&builder, "  %-14s %d\n", row.label+":", row.count)
	}
	return builder.String()
}
