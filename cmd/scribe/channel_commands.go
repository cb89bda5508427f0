package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/dispatch"
	"scribe/internal/queue"
)

func newChannelCommand(cmdCtx *commandContext) *cobra.Command {
	channelCmd := &cobra.Command{
		Use:   "channel",
		Short: "Inspect and maintain stored channels",
	}
	channelCmd.AddCommand(newChannelListCommand(cmdCtx))
	channelCmd.AddCommand(newChannelVideosCommand(cmdCtx))
	channelCmd.AddCommand(newChannelResetCommand(cmdCtx))
	channelCmd.AddCommand(newChannelPurgeCommand(cmdCtx))
	return channelCmd
}

func newChannelListCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List channels present in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			channels, err := store.Channels(cmd.Context())
			if err != nil {
				return err
			}
			if len(channels) == 0 {
				cmd.Println("Store is empty.")
				return nil
			}
			for _, channel := range channels {
				cmd.Println(channel)
			}
			return nil
		},
	}
}

func newChannelVideosCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "videos <channel>",
		Short: "List a channel's videos and their progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			channel, err := resolveChannelArg(cmd, store, args)
			if err != nil {
				return err
			}

			items, err := store.List(cmd.Context(), channel)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				cmd.Printf("No videos stored for %s\n", channel)
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				detail := item.ErrorMessage
				if detail == "" {
					detail = item.TranscriptPath
				}
				rows = append(rows, []string{
					item.VideoID,
					item.Title,
					fmt.Sprintf("%d:%02d", item.DurationSec/60, item.DurationSec%60),
					string(item.Status),
					detail,
				})
			}
			headers := []string{"Video", "Title", "Length", "Status", "Detail"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
			cmd.Println(renderTable(headers, rows, aligns))
			return nil
		},
	}
}

func resolveChannelArg(cmd *cobra.Command, store *queue.Store, args []string) (string, error) {
	channels, err := store.Channels(cmd.Context())
	if err != nil {
		return "", err
	}
	return dispatch.ResolveChannel(args[0], channels)
}

func newChannelResetCommand(cmdCtx *commandContext) *cobra.Command {
	var erroredOnly bool

	cmd := &cobra.Command{
		Use:   "reset <channel>",
		Short: "Reset a channel's videos to pending, clearing recorded paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			channel, err := resolveChannelArg(cmd, store, args)
			if err != nil {
				return err
			}

			reset := store.ResetChannel
			if erroredOnly {
				reset = store.ResetErrored
			}
			count, err := reset(cmd.Context(), channel)
			if err != nil {
				return err
			}
			cmd.Printf("Reset %d videos on %s\n", count, channel)
			return nil
		},
	}
	cmd.Flags().BoolVar(&erroredOnly, "errors", false, "Reset only errored videos")
	return cmd
}

func newChannelPurgeCommand(cmdCtx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "purge [channel]",
		Short: "Delete a channel's rows from the store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if all {
				removed, err := store.Purge(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("Purged %d videos\n", removed)
				return nil
			}

			if len(args) == 0 {
				return errors.New("pass a channel or --all")
			}
			channel, err := resolveChannelArg(cmd, store, args)
			if err != nil {
				return err
			}
			removed, err := store.PurgeChannel(cmd.Context(), channel)
			if err != nil {
				return err
			}
			cmd.Printf("Purged %d videos on %s\n", removed, channel)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Purge every channel")
	return cmd
}
