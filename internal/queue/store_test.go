package queue_test

import (
	"context"
	"errors"
	"testing"

	"scribe/internal/queue"
	"scribe/internal/testsupport"
)

func TestUpsertIfAbsentPreservesExistingRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	inserted, err := store.UpsertIfAbsent(ctx, queue.Item{
		VideoID:     "dQw4w9WgXcQ",
		URL:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Title:       "First Title",
		DurationSec: 212,
		Channel:     "Test Channel",
	})
	if err != nil {
		t.Fatalf("UpsertIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatal("expected first upsert to insert")
	}

	if err := store.MarkCompleted(ctx, "dQw4w9WgXcQ", "/tmp/t.txt"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	// Re-enumeration sees the same video again with fresher metadata; the
	// stored row must keep its completed status.
	inserted, err = store.UpsertIfAbsent(ctx, queue.Item{
		VideoID:     "dQw4w9WgXcQ",
		URL:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Title:       "Updated Title",
		DurationSec: 213,
		Channel:     "Test Channel",
	})
	if err != nil {
		t.Fatalf("UpsertIfAbsent second: %v", err)
	}
	if inserted {
		t.Fatal("expected second upsert to be ignored")
	}

	item, err := store.GetByID(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected status completed, got %s", item.Status)
	}
	if item.Title != "First Title" {
		t.Fatalf("expected original title retained, got %q", item.Title)
	}
	if item.TranscriptPath != "/tmp/t.txt" {
		t.Fatalf("expected transcript path retained, got %q", item.TranscriptPath)
	}
}

func TestTransitionsRecordArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedVideo(t, store, queue.Item{VideoID: "abcdefghijk", Channel: "Chan"})

	if err := store.MarkDownloading(ctx, "abcdefghijk"); err != nil {
		t.Fatalf("MarkDownloading: %v", err)
	}
	if err := store.MarkDownloaded(ctx, "abcdefghijk", "/audio/abcdefghijk.m4a"); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}

	item, err := store.GetByID(ctx, "abcdefghijk")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusDownloaded {
		t.Fatalf("expected downloaded, got %s", item.Status)
	}
	if item.AudioPath != "/audio/abcdefghijk.m4a" {
		t.Fatalf("unexpected audio path %q", item.AudioPath)
	}

	if err := store.MarkTranscribing(ctx, "abcdefghijk"); err != nil {
		t.Fatalf("MarkTranscribing: %v", err)
	}
	if err := store.MarkCompleted(ctx, "abcdefghijk", "/transcripts/out.txt"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	item, err = store.GetByID(ctx, "abcdefghijk")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", item.Status)
	}
	if item.TranscriptPath != "/transcripts/out.txt" {
		t.Fatalf("unexpected transcript path %q", item.TranscriptPath)
	}
}

func TestMarkErrorStoresMessageAndClearsOnRetry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedVideo(t, store, queue.Item{VideoID: "errvideo001", Channel: "Chan"})

	if err := store.MarkError(ctx, "errvideo001", "download failed: HTTP 403"); err != nil {
		t.Fatalf("MarkError: %v", err)
	}
	item, err := store.GetByID(ctx, "errvideo001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusError || item.ErrorMessage != "download failed: HTTP 403" {
		t.Fatalf("unexpected item after MarkError: %+v", item)
	}

	if err := store.MarkDownloading(ctx, "errvideo001"); err != nil {
		t.Fatalf("MarkDownloading: %v", err)
	}
	item, err = store.GetByID(ctx, "errvideo001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.ErrorMessage != "" {
		t.Fatalf("expected error message cleared, got %q", item.ErrorMessage)
	}
}

func TestTransitionUnknownIDReturnsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	err := store.MarkDownloading(context.Background(), "nosuchvideo")
	if !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestItemsByStatusOrdersByDuration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedVideo(t, store, queue.Item{VideoID: "long0000001", DurationSec: 3600, Channel: "Chan"})
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "short000001", DurationSec: 60, Channel: "Chan"})
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "medium00001", DurationSec: 600, Channel: "Chan"})
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "otherchan01", DurationSec: 10, Channel: "Other"})

	items, err := store.ItemsByStatus(ctx, "Chan", queue.StatusPending)
	if err != nil {
		t.Fatalf("ItemsByStatus: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	want := []string{"short000001", "medium00001", "long0000001"}
	for i, id := range want {
		if items[i].VideoID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, items[i].VideoID)
		}
	}
}

func TestItemsByStatusMultipleStatuses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedVideo(t, store, queue.Item{VideoID: "pending0001", DurationSec: 30, Channel: "Chan"})
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "done0000001", DurationSec: 10, Channel: "Chan"})
	if err := store.MarkCompleted(ctx, "done0000001", "/t.txt"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "fetched0001", DurationSec: 20, Channel: "Chan"})
	if err := store.MarkDownloaded(ctx, "fetched0001", "/a.m4a"); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}

	items, err := store.ItemsByStatus(ctx, "Chan", queue.StatusPending, queue.StatusDownloaded)
	if err != nil {
		t.Fatalf("ItemsByStatus: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].VideoID != "fetched0001" || items[1].VideoID != "pending0001" {
		t.Fatalf("unexpected order: %s, %s", items[0].VideoID, items[1].VideoID)
	}
}

func TestStatsCountsPerStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedVideo(t, store, queue.Item{VideoID: "stats000001", Channel: "Chan", DurationSec: 60})
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "stats000002", Channel: "Chan", DurationSec: 120})
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "stats000003", Channel: "Chan", DurationSec: 30})
	if err := store.MarkCompleted(ctx, "stats000002", "/t.txt"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := store.MarkError(ctx, "stats000003", "boom"); err != nil {
		t.Fatalf("MarkError: %v", err)
	}

	stats, err := store.Stats(ctx, "Chan")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 1 || stats.Completed != 1 || stats.Errored != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Remaining() != 2 {
		t.Fatalf("expected 2 remaining, got %d", stats.Remaining())
	}
	if stats.TotalDurationSec != 210 || stats.CompletedDurationSec != 120 {
		t.Fatalf("unexpected duration totals: %+v", stats)
	}
}

func TestResetStuckRollsBackInFlightStates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedVideo(t, store, queue.Item{VideoID: "stuck000001", Channel: "Chan"})
	if err := store.MarkDownloading(ctx, "stuck000001"); err != nil {
		t.Fatalf("MarkDownloading: %v", err)
	}
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "stuck000002", Channel: "Chan"})
	if err := store.MarkDownloaded(ctx, "stuck000002", "/a.m4a"); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}
	if err := store.MarkTranscribing(ctx, "stuck000002"); err != nil {
		t.Fatalf("MarkTranscribing: %v", err)
	}

	reset, err := store.ResetStuck(ctx, "Chan")
	if err != nil {
		t.Fatalf("ResetStuck: %v", err)
	}
	if reset != 2 {
		t.Fatalf("expected 2 reset, got %d", reset)
	}

	first, _ := store.GetByID(ctx, "stuck000001")
	if first.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", first.Status)
	}
	second, _ := store.GetByID(ctx, "stuck000002")
	if second.Status != queue.StatusDownloaded {
		t.Fatalf("expected downloaded, got %s", second.Status)
	}
}

func TestResetChannelForcesPendingAndClearsPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// One item errored after transcription started, one fully completed.
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "resetme0001", Channel: "Chan"})
	if err := store.MarkDownloaded(ctx, "resetme0001", "/a.m4a"); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}
	if err := store.MarkError(ctx, "resetme0001", "boom"); err != nil {
		t.Fatalf("MarkError: %v", err)
	}
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "resetme0002", Channel: "Chan"})
	if err := store.MarkCompleted(ctx, "resetme0002", "/t.txt"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "othrchan001", Channel: "Other"})
	if err := store.MarkCompleted(ctx, "othrchan001", "/o.txt"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	reset, err := store.ResetChannel(ctx, "Chan")
	if err != nil {
		t.Fatalf("ResetChannel: %v", err)
	}
	if reset != 2 {
		t.Fatalf("expected 2 reset, got %d", reset)
	}

	for _, id := range []string{"resetme0001", "resetme0002"} {
		item, _ := store.GetByID(ctx, id)
		if item.Status != queue.StatusPending {
			t.Fatalf("%s not reset: status %s", id, item.Status)
		}
		if item.AudioPath != "" || item.TranscriptPath != "" || item.ErrorMessage != "" {
			t.Fatalf("%s retains artifacts after reset: %+v", id, item)
		}
	}

	other, _ := store.GetByID(ctx, "othrchan001")
	if other.Status != queue.StatusCompleted || other.TranscriptPath == "" {
		t.Fatalf("other channel should be untouched, got %+v", other)
	}
}

func TestResetErroredRetriesErroredOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedVideo(t, store, queue.Item{VideoID: "resetme0001", Channel: "Chan"})
	if err := store.MarkDownloaded(ctx, "resetme0001", "/a.m4a"); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}
	if err := store.MarkError(ctx, "resetme0001", "boom"); err != nil {
		t.Fatalf("MarkError: %v", err)
	}
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "keepdone001", Channel: "Chan"})
	if err := store.MarkCompleted(ctx, "keepdone001", "/t.txt"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	reset, err := store.ResetErrored(ctx, "Chan")
	if err != nil {
		t.Fatalf("ResetErrored: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset, got %d", reset)
	}

	item, _ := store.GetByID(ctx, "resetme0001")
	if item.Status != queue.StatusPending || item.ErrorMessage != "" || item.AudioPath != "" {
		t.Fatalf("unexpected item after reset: %+v", item)
	}
	done, _ := store.GetByID(ctx, "keepdone001")
	if done.Status != queue.StatusCompleted {
		t.Fatalf("completed item should be untouched, got %s", done.Status)
	}
}

func TestChannelsAndPurge(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedVideo(t, store, queue.Item{VideoID: "chana000001", Channel: "Alpha"})
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "chanb000001", Channel: "Beta"})
	testsupport.SeedVideo(t, store, queue.Item{VideoID: "chanb000002", Channel: "Beta"})

	channels, err := store.Channels(ctx)
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(channels) != 2 || channels[0] != "Alpha" || channels[1] != "Beta" {
		t.Fatalf("unexpected channels: %v", channels)
	}

	removed, err := store.PurgeChannel(ctx, "Beta")
	if err != nil {
		t.Fatalf("PurgeChannel: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	removed, err = store.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	stats, err := store.Stats(ctx, "")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("expected empty store, got %+v", stats)
	}
}
