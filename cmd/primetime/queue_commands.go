package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"primetime/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the publishing queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				status, ok := queue.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				statuses = append(statuses, status)
			}
			return ctx.withStore(func(store *queue.Store) error {
				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "The queue is empty.")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						string(item.Status),
						item.Filename,
						item.Platform,
						item.Channel,
						item.Title,
						queueDetail(item),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(),
					renderTable([]string{"ID", "STATUS", "FILENAME", "PLATFORM", "CHANNEL", "TITLE", "DETAIL"}, rows, 1))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show items with this status")
	return cmd
}

func queueDetail(item *queue.Item) string {
	switch item.Status {
	case queue.StatusUploaded:
		return item.PublishedLink
	case queue.StatusScheduled:
		return "on " + item.ScheduledDate
	case queue.StatusFailed:
		return item.ErrorMessage
	default:
		return ""
	}
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one queue item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid queue item id %q", args[0])
			}
			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("queue item %d not found", id)
				}
				printItem(cmd, item)
				return nil
			})
		},
	}
}

func printItem(cmd *cobra.Command, item *queue.Item) {
	out := cmd.OutOrStdout()
	write := func(label, value string) {
		if value != "" {
			fmt.Fprintf(out, "%-15s %s\n", label+":", value)
		}
	}
	write("ID", strconv.FormatInt(item.ID, 10))
	write("Filename", item.Filename)
	write("Status", string(item.Status))
	write("Platform", item.Platform)
	write("Channel", item.Channel)
	write("Title", item.Title)
	write("Description", item.Description)
	write("Tags", item.Tags)
	write("Source", item.SourceLink)
	write("Published", item.PublishedLink)
	write("Scheduled", item.ScheduledDate)
	write("Publish date", item.PublishDate)
	write("Error", item.ErrorMessage)
	write("Created", item.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if item.UploadedAt != nil {
		write("Uploaded", item.UploadedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Reset failed items to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid queue item id %q", arg)
				}
				ids = append(ids, id)
			}
			return ctx.withStore(func(store *queue.Store) error {
				reset, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d item(s) to pending.\n", reset)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var uploadedOnly bool
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uploadedOnly && failedOnly {
				return fmt.Errorf("--uploaded and --failed are mutually exclusive")
			}
			return ctx.withStore(func(store *queue.Store) error {
				var (
					removed int
					err     error
				)
				switch {
				case uploadedOnly:
					removed, err = store.ClearUploaded(cmd.Context())
				case failedOnly:
					removed, err = store.ClearFailed(cmd.Context())
				default:
					removed, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s).\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&uploadedOnly, "uploaded", false, "Only remove uploaded items")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only remove failed items")
	return cmd
}
