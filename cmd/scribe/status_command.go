package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/queue"
)

func statsRow(channel string, stats queue.Stats) []string {
	return []string{
		channel,
		fmt.Sprintf("%d", stats.Total),
		fmt.Sprintf("%d", stats.Pending),
		fmt.Sprintf("%d", stats.Downloaded),
		fmt.Sprintf("%d", stats.Completed),
		fmt.Sprintf("%d", stats.Errored),
		fmt.Sprintf("%d", stats.Remaining()),
		fmt.Sprintf("%.1f/%.1f", hours(stats.CompletedDurationSec), hours(stats.TotalDurationSec)),
	}
}

func hours(seconds int64) float64 {
	return float64(seconds) / 3600
}

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-channel backlog progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			channels, err := store.Channels(ctx)
			if err != nil {
				return err
			}
			if len(channels) == 0 {
				cmd.Println("Store is empty. Start with: scribe run <channel-url>")
				return nil
			}

			rows := make([][]string, 0, len(channels))
			for _, channel := range channels {
				stats, err := store.Stats(ctx, channel)
				if err != nil {
					return err
				}
				rows = append(rows, statsRow(channel, stats))
			}

			headers := []string{"Channel", "Total", "Pending", "Downloaded", "Completed", "Errored", "Remaining", "Hours"}
			aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
			cmd.Println(renderTable(headers, rows, aligns))
			return nil
		},
	}
}
