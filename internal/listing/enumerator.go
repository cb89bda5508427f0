package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/services/ytdlp"
)

// videoIDLength is the fixed length of YouTube video ids. Flat playlist
// dumps also contain shelf and playlist entries; those carry channel-style
// ids (UC prefixed, longer) and must not become work items.
const videoIDLength = 11

// Lister provides a flat channel listing.
type Lister interface {
	EnumerateChannel(ctx context.Context, channelURL string) (ytdlp.Listing, error)
}

// Result is a completed enumeration.
type Result struct {
	Channel string
	Videos  []queue.Item
}

// Enumerator lists a channel's uploads and shapes them into work items.
type Enumerator struct {
	lister Lister
	logger *slog.Logger
}

// NewEnumerator creates an enumerator backed by the given lister.
func NewEnumerator(lister Lister, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enumerator{lister: lister, logger: logger}
}

// Enumerate lists the channel and returns one pending item per video. Any
// listing failure returns an error and zero items.
func (e *Enumerator) Enumerate(ctx context.Context, channelURL string) (Result, error) {
	listing, err := e.lister.EnumerateChannel(ctx, channelURL)
	if err != nil {
		return Result{}, fmt.Errorf("enumerate %s: %w", channelURL, err)
	}

	result := Result{Channel: listing.Channel}
	skipped := 0
	for _, entry := range listing.Entries {
		if !isVideoID(entry.ID) {
			skipped++
			continue
		}
		title := entry.Title
		if title == "" {
			title = "Unknown"
		}
		url := entry.URL
		if url == "" {
			url = "https://www.youtube.com/watch?v=" + entry.ID
		}
		result.Videos = append(result.Videos, queue.Item{
			VideoID:     entry.ID,
			URL:         url,
			Title:       title,
			DurationSec: int64(entry.DurationSec),
			Channel:     listing.Channel,
			Status:      queue.StatusPending,
		})
	}

	e.logger.Info("channel enumerated",
		logging.String(logging.FieldChannel, result.Channel),
		logging.Int("videos", len(result.Videos)),
		logging.Int("skipped_entries", skipped),
	)
	return result, nil
}

func isVideoID(id string) bool {
	return len(id) == videoIDLength && !strings.HasPrefix(id, "UC")
}
