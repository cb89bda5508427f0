package fetch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/services"
	"scribe/internal/textutil"
)

// AudioFetcher downloads the audio stream for one video.
type AudioFetcher interface {
	DownloadAudio(ctx context.Context, videoURL, videoID, destDir string) (string, error)
}

// Downloader runs parallel audio downloads against the store.
type Downloader struct {
	store   *queue.Store
	fetcher AudioFetcher
	cfg     *config.Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDownloader creates a download stage.
func NewDownloader(store *queue.Store, fetcher AudioFetcher, cfg *config.Config, logger *slog.Logger) *Downloader {
	var limiter *rate.Limiter
	if cfg.Fetch.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Fetch.RatePerSecond), 1)
	}
	return &Downloader{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		limiter: limiter,
		logger:  logging.NewComponentLogger(logger, "fetch"),
	}
}

// FetchBatch downloads every item in parallel and returns the ones that
// succeeded. Per-item failures are recorded in the store and never abort the
// batch; the only returned error is context cancellation.
func (d *Downloader) FetchBatch(ctx context.Context, items []*queue.Item) ([]*queue.Item, error) {
	if len(items) == 0 {
		return nil, nil
	}

	workers := d.cfg.Fetch.Workers
	if workers > len(items) {
		workers = len(items)
	}
	if workers < 1 {
		workers = 1
	}

	d.logger.Info("fetch batch started",
		logging.Int("items", len(items)),
		logging.Int("workers", workers),
	)

	work := make(chan *queue.Item)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []*queue.Item
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				if updated := d.fetchOne(ctx, item); updated != nil {
					mu.Lock()
					succeeded = append(succeeded, updated)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case work <- item:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	d.logger.Info("fetch batch finished",
		logging.Int("succeeded", len(succeeded)),
		logging.Int("failed", len(items)-len(succeeded)),
	)

	if err := ctx.Err(); err != nil {
		return succeeded, err
	}
	return succeeded, nil
}

// fetchOne downloads one item, retrying transient failures. It returns the
// updated item on success, nil otherwise.
func (d *Downloader) fetchOne(ctx context.Context, item *queue.Item) *queue.Item {
	ctx = services.WithVideoID(ctx, item.VideoID)
	logger := logging.WithContext(ctx, d.logger).With(
		logging.String(logging.FieldChannel, item.Channel),
	)

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil
		}
	}

	if err := d.store.MarkDownloading(ctx, item.VideoID); err != nil {
		logger.Error("mark downloading", logging.Error(err))
		return nil
	}

	destDir := filepath.Join(d.cfg.Paths.AudioDir, textutil.SanitizeChannel(item.Channel))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		d.recordFailure(ctx, logger, item, err)
		return nil
	}

	attempts := d.cfg.Fetch.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		audioPath string
		lastErr   error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		audioPath, lastErr = d.fetcher.DownloadAudio(ctx, item.URL, item.VideoID, destDir)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("download attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("attempts", attempts),
			logging.Error(lastErr),
		)
	}
	if lastErr != nil {
		d.recordFailure(ctx, logger, item, lastErr)
		return nil
	}

	if err := d.store.MarkDownloaded(ctx, item.VideoID, audioPath); err != nil {
		logger.Error("mark downloaded", logging.Error(err))
		return nil
	}

	logger.Info("audio downloaded", logging.String("audio_path", audioPath))
	updated := *item
	updated.Status = queue.StatusDownloaded
	updated.AudioPath = audioPath
	return &updated
}

func (d *Downloader) recordFailure(ctx context.Context, logger *slog.Logger, item *queue.Item, cause error) {
	logger.Error("download failed", logging.Error(cause))
	if err := d.store.MarkError(ctx, item.VideoID, cause.Error()); err != nil {
		logger.Error("mark error", logging.Error(err))
	}
}
