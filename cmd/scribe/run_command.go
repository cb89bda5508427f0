package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/fetch"
	"scribe/internal/listing"
	"scribe/internal/pipeline"
	"scribe/internal/queue"
	"scribe/internal/services/whisper"
	"scribe/internal/services/ytdlp"
	"scribe/internal/transcribe"
)

const summaryElapsedPrecision = 100 * time.Millisecond

func buildRunner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *pipeline.Runner {
	client := ytdlp.New(cfg.YtdlpBinary())
	enumerator := listing.NewEnumerator(client, logger)
	downloader := fetch.NewDownloader(store, client, cfg, logger)
	engine := whisper.NewEngine(whisper.Options{
		Binary:      cfg.WhisperBinary(),
		Model:       cfg.Whisper.Model,
		Language:    cfg.Whisper.Language,
		CUDAEnabled: cfg.Whisper.CUDAEnabled,
	})
	transcriber := transcribe.NewTranscriber(store, engine, cfg, logger)
	return pipeline.NewRunner(cfg, store, enumerator, downloader, transcriber, logger)
}

func channelURLFromArgs(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	if url := strings.TrimSpace(cfg.Channel.URL); url != "" {
		return url, nil
	}
	return "", errors.New("no channel: pass a channel URL or set channel.url in the config")
}

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [channel-url]",
		Short: "Enumerate, download, and transcribe a whole channel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			channelURL, err := channelURLFromArgs(cfg, args)
			if err != nil {
				return err
			}

			logger, err := cmdCtx.newLogger(cfg, "scribe.log")
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			runner := buildRunner(cfg, store, logger)
			summary, err := runner.Run(ctx, channelURL)
			if summary != nil {
				printSummary(cmd, summary)
			}
			if err != nil && !errors.Is(err, ctx.Err()) {
				return err
			}
			return nil
		},
	}
}

func printSummary(cmd *cobra.Command, summary *pipeline.Summary) {
	rows := [][]string{
		{"Channel", summary.Channel},
		{"New videos", fmt.Sprintf("%d", summary.Discovered)},
		{"Transcribed this run", fmt.Sprintf("%d", summary.Transcribed)},
		{"Completed", fmt.Sprintf("%d", summary.Stats.Completed)},
		{"Errored", fmt.Sprintf("%d", summary.Stats.Errored)},
		{"Remaining", fmt.Sprintf("%d", summary.Stats.Remaining())},
		{"Transcript words", fmt.Sprintf("%d", summary.Words)},
		{"Transcript bytes", fmt.Sprintf("%d", summary.Bytes)},
		{"Elapsed", summary.Elapsed.Round(summaryElapsedPrecision).String()},
	}
	cmd.Println(renderTable([]string{"Run Summary", ""}, rows, []columnAlignment{alignLeft, alignRight}))
}
