package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/dispatch"
	"scribe/internal/queue"
)

// stageOutcome marks a stage's result line as partial when the run was
// cancelled before the backlog drained.
func stageOutcome(ctx context.Context, line string) string {
	if ctx.Err() != nil {
		return line + " (interrupted; progress saved)"
	}
	return line
}

// resolveStoredChannel maps an optional channel argument (or the configured
// channel URL) to a channel name already present in the store.
func resolveStoredChannel(ctx context.Context, cmdCtx *commandContext, store *queue.Store, args []string) (string, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return "", err
	}
	ref, err := channelURLFromArgs(cfg, args)
	if err != nil {
		return "", err
	}
	channels, err := store.Channels(ctx)
	if err != nil {
		return "", err
	}
	return dispatch.ResolveChannel(ref, channels)
}

func newFetchCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [channel]",
		Short: "Download pending audio without transcribing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signalContext()
			defer stop()

			channel, err := resolveStoredChannel(ctx, cmdCtx, store, args)
			if err != nil {
				return err
			}

			logger, err := cmdCtx.newLogger(cfg, "scribe.log")
			if err != nil {
				return err
			}

			runner := buildRunner(cfg, store, logger)
			fetched, err := runner.FetchOnly(ctx, channel)
			if err != nil && !errors.Is(err, ctx.Err()) {
				return err
			}
			cmd.Println(stageOutcome(ctx, fmt.Sprintf("Downloaded audio for %d videos on %s", fetched, channel)))
			return nil
		},
	}
}

func newTranscribeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe [channel]",
		Short: "Transcribe already-downloaded audio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signalContext()
			defer stop()

			channel, err := resolveStoredChannel(ctx, cmdCtx, store, args)
			if err != nil {
				return err
			}

			logger, err := cmdCtx.newLogger(cfg, "scribe.log")
			if err != nil {
				return err
			}

			runner := buildRunner(cfg, store, logger)
			done, err := runner.TranscribeOnly(ctx, channel)
			if err != nil && !errors.Is(err, ctx.Err()) {
				return err
			}
			cmd.Println(stageOutcome(ctx, fmt.Sprintf("Transcribed %d videos on %s", done, channel)))
			return nil
		},
	}
}

func newDispatchCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch [channel]",
		Short: "Ship downloaded audio to the remote transcription pool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if !cfg.Remote.Enabled {
				return errors.New("remote dispatch is disabled; set remote.enabled = true in the config")
			}

			ctx, stop := signalContext()
			defer stop()

			ref, err := channelURLFromArgs(cfg, args)
			if err != nil {
				return err
			}

			logger, err := cmdCtx.newLogger(cfg, "scribe.log")
			if err != nil {
				return err
			}

			client := dispatch.NewRedisClient(cfg)
			defer client.Close()

			dispatcher := dispatch.NewDispatcher(store, cfg, client, logger)
			report, err := dispatcher.Dispatch(ctx, ref)
			if err != nil {
				return err
			}
			cmd.Printf("Dispatched %d jobs for %s: %d completed, %d failed\n",
				report.Submitted, report.Channel, report.Completed, report.Failed)
			return nil
		},
	}
}
