package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"scribe/internal/fetch"
	"scribe/internal/queue"
	"scribe/internal/testsupport"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int // fail the first N attempts per video
	err      error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int), failures: make(map[string]int)}
}

func (f *fakeFetcher) DownloadAudio(ctx context.Context, videoURL, videoID, destDir string) (string, error) {
	f.mu.Lock()
	f.calls[videoID]++
	attempt := f.calls[videoID]
	failUntil := f.failures[videoID]
	f.mu.Unlock()

	if attempt <= failUntil {
		if f.err != nil {
			return "", f.err
		}
		return "", fmt.Errorf("attempt %d failed", attempt)
	}
	path := filepath.Join(destDir, videoID+".m4a")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeFetcher) attempts(videoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[videoID]
}

func TestFetchBatchDownloadsAndMarksItems(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFetchWorkers(3))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	var items []*queue.Item
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("video%06d", i)
		items = append(items, testsupport.SeedVideo(t, store, queue.Item{VideoID: id, Channel: "Test Channel"}))
	}

	fetcher := newFakeFetcher()
	downloader := fetch.NewDownloader(store, fetcher, cfg, nil)

	succeeded, err := downloader.FetchBatch(ctx, items)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(succeeded) != 5 {
		t.Fatalf("expected 5 succeeded, got %d", len(succeeded))
	}

	for _, item := range items {
		stored, err := store.GetByID(ctx, item.VideoID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if stored.Status != queue.StatusDownloaded {
			t.Fatalf("%s: expected downloaded, got %s", item.VideoID, stored.Status)
		}
		if _, err := os.Stat(stored.AudioPath); err != nil {
			t.Fatalf("%s: audio file missing: %v", item.VideoID, err)
		}
		if filepath.Dir(stored.AudioPath) != filepath.Join(cfg.Paths.AudioDir, "Test Channel") {
			t.Fatalf("%s: audio not in channel directory: %s", item.VideoID, stored.AudioPath)
		}
	}
}

func TestFetchBatchRetriesTransientFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Fetch.RetryAttempts = 3
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedVideo(t, store, queue.Item{VideoID: "flaky000001", Channel: "Chan"})

	fetcher := newFakeFetcher()
	fetcher.failures["flaky000001"] = 2

	succeeded, err := fetch.NewDownloader(store, fetcher, cfg, nil).FetchBatch(ctx, []*queue.Item{item})
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(succeeded) != 1 {
		t.Fatalf("expected success after retries, got %d", len(succeeded))
	}
	if got := fetcher.attempts("flaky000001"); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFetchBatchRecordsFailureWithoutAbortingBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Fetch.RetryAttempts = 2
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	bad := testsupport.SeedVideo(t, store, queue.Item{VideoID: "broken00001", Channel: "Chan"})
	good := testsupport.SeedVideo(t, store, queue.Item{VideoID: "working0001", Channel: "Chan"})

	fetcher := newFakeFetcher()
	fetcher.failures["broken00001"] = 99
	fetcher.err = errors.New("HTTP Error 403: Forbidden")

	succeeded, err := fetch.NewDownloader(store, fetcher, cfg, nil).FetchBatch(ctx, []*queue.Item{bad, good})
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(succeeded) != 1 || succeeded[0].VideoID != "working0001" {
		t.Fatalf("expected only the working item, got %+v", succeeded)
	}

	stored, err := store.GetByID(ctx, "broken00001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != queue.StatusError {
		t.Fatalf("expected error status, got %s", stored.Status)
	}
	if stored.ErrorMessage != "HTTP Error 403: Forbidden" {
		t.Fatalf("unexpected error message %q", stored.ErrorMessage)
	}
	if got := fetcher.attempts("broken00001"); got != 2 {
		t.Fatalf("expected retries bounded at 2, got %d", got)
	}
}

func TestFetchBatchStopsOnCancelledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFetchWorkers(1))
	store := testsupport.MustOpenStore(t, cfg)

	var items []*queue.Item
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("cancel%05d", i)
		items = append(items, testsupport.SeedVideo(t, store, queue.Item{VideoID: id, Channel: "Chan"}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	succeeded, err := fetch.NewDownloader(store, newFakeFetcher(), cfg, nil).FetchBatch(ctx, items)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(succeeded) != 0 {
		t.Fatalf("cancelled batch should not report successes, got %d", len(succeeded))
	}
}
