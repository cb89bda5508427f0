package listing_test

import (
	"context"
	"errors"
	"testing"

	"scribe/internal/listing"
	"scribe/internal/queue"
	"scribe/internal/services/ytdlp"
)

type fakeLister struct {
	listing ytdlp.Listing
	err     error
}

func (f *fakeLister) EnumerateChannel(ctx context.Context, channelURL string) (ytdlp.Listing, error) {
	return f.listing, f.err
}

func TestEnumerateFiltersNonVideoEntries(t *testing.T) {
	lister := &fakeLister{listing: ytdlp.Listing{
		Channel: "Test Channel",
		Entries: []ytdlp.Entry{
			{ID: "dQw4w9WgXcQ", Title: "Real Video", DurationSec: 212},
			{ID: "UCabcdefghijklmnopqrstuv", Title: "Channel entry"},
			{ID: "short", Title: "Truncated id"},
			{ID: "UCw4w9WgXcQ", Title: "Eleven chars but channel-prefixed"},
			{ID: "abcdefghijk", Title: "", DurationSec: 60},
		},
	}}

	result, err := listing.NewEnumerator(lister, nil).Enumerate(context.Background(), "https://www.youtube.com/@test")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if result.Channel != "Test Channel" {
		t.Fatalf("unexpected channel %q", result.Channel)
	}
	if len(result.Videos) != 2 {
		t.Fatalf("expected 2 videos, got %d: %+v", len(result.Videos), result.Videos)
	}

	first := result.Videos[0]
	if first.VideoID != "dQw4w9WgXcQ" || first.DurationSec != 212 || first.Status != queue.StatusPending {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.Channel != "Test Channel" {
		t.Fatalf("item should carry channel name, got %q", first.Channel)
	}

	second := result.Videos[1]
	if second.Title != "Unknown" {
		t.Fatalf("empty title should default to Unknown, got %q", second.Title)
	}
	if second.URL != "https://www.youtube.com/watch?v=abcdefghijk" {
		t.Fatalf("missing url should be derived from id, got %q", second.URL)
	}
}

func TestEnumerateFailureReturnsNoItems(t *testing.T) {
	lister := &fakeLister{err: errors.New("network unreachable")}

	result, err := listing.NewEnumerator(lister, nil).Enumerate(context.Background(), "https://www.youtube.com/@test")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(result.Videos) != 0 {
		t.Fatalf("failed enumeration must not return items, got %d", len(result.Videos))
	}
}
