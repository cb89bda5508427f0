package pipeline

import (
	"context"
	"os"
	"strings"
	"time"

	"scribe/internal/queue"
	"scribe/internal/transcript"
)

// Summary is the final report for a pipeline run.
type Summary struct {
	RunID       string
	Channel     string
	Discovered  int
	Transcribed int
	Stats       queue.Stats
	// Words and Bytes aggregate over every completed artifact for the
	// channel, not just this run's output.
	Words   int64
	Bytes   int64
	Elapsed time.Duration
}

func (r *Runner) summarize(ctx context.Context, runID, channel string, started time.Time, discovered, transcribed int) (*Summary, error) {
	stats, err := r.store.Stats(ctx, channel)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:       runID,
		Channel:     channel,
		Discovered:  discovered,
		Transcribed: transcribed,
		Stats:       stats,
		Elapsed:     time.Since(started),
	}

	completed, err := r.store.ItemsByStatus(ctx, channel, queue.StatusCompleted)
	if err != nil {
		return nil, err
	}
	for _, item := range completed {
		if item.TranscriptPath == "" {
			continue
		}
		data, err := os.ReadFile(item.TranscriptPath)
		if err != nil {
			continue
		}
		summary.Bytes += int64(len(data))
		// Word counts come from the full-text section when the artifact
		// parses, so banners and timestamps are not counted twice.
		text, err := transcript.ParseFullText(string(data))
		if err != nil {
			text = string(data)
		}
		summary.Words += int64(len(strings.Fields(text)))
	}
	return summary, nil
}
