package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"scribe/internal/config"
	"scribe/internal/listing"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/services"
)

// ErrLocked indicates another run already holds the store's run lock.
var ErrLocked = errors.New("another scribe run is already active for this store")

// ErrNoBacklog indicates a partial flow was asked to run against a channel
// with nothing to do.
var ErrNoBacklog = errors.New("no backlog for channel")

// Enumerator lists a channel into work items.
type Enumerator interface {
	Enumerate(ctx context.Context, channelURL string) (listing.Result, error)
}

// Fetcher downloads a batch of items.
type Fetcher interface {
	FetchBatch(ctx context.Context, items []*queue.Item) ([]*queue.Item, error)
}

// Transcriber transcribes a batch of items.
type Transcriber interface {
	TranscribeBatch(ctx context.Context, items []*queue.Item) (int, error)
}

// Runner drives the pipeline stages against one store.
type Runner struct {
	cfg         *config.Config
	store       *queue.Store
	enumerator  Enumerator
	fetcher     Fetcher
	transcriber Transcriber
	logger      *slog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg *config.Config, store *queue.Store, enumerator Enumerator, fetcher Fetcher, transcriber Transcriber, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:         cfg,
		store:       store,
		enumerator:  enumerator,
		fetcher:     fetcher,
		transcriber: transcriber,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
}

// lockPath derives the run lock location from the database file so two
// processes sharing a store exclude each other while separate stores run
// freely in parallel.
func (r *Runner) lockPath() string {
	return filepath.Join(filepath.Dir(r.cfg.Paths.DatabaseFile), "scribe.lock")
}

func (r *Runner) acquireLock() (*flock.Flock, error) {
	lock := flock.New(r.lockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return lock, nil
}

// Run executes the full pipeline for the configured channel.
func (r *Runner) Run(ctx context.Context, channelURL string) (*Summary, error) {
	lock, err := r.acquireLock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	result, err := r.enumerator.Enumerate(ctx, channelURL)
	if err != nil {
		return nil, err
	}

	discovered := 0
	for _, item := range result.Videos {
		inserted, err := r.store.UpsertIfAbsent(ctx, item)
		if err != nil {
			return nil, err
		}
		if inserted {
			discovered++
		}
	}
	logger.Info("backlog updated",
		logging.String(logging.FieldChannel, result.Channel),
		logging.Int("enumerated", len(result.Videos)),
		logging.Int("new", discovered),
	)

	transcribed, err := r.drainBacklog(ctx, logger, result.Channel)

	summary, sumErr := r.summarize(context.Background(), runID, result.Channel, started, discovered, transcribed)
	if err != nil {
		return summary, err
	}
	if sumErr != nil {
		return nil, sumErr
	}
	logger.Info("run finished",
		logging.Int("transcribed", transcribed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// drainBacklog alternates fetch and transcribe batches until nothing
// selectable remains or the context is cancelled. In-flight leftovers from a
// previous crash are reset before the first selection.
func (r *Runner) drainBacklog(ctx context.Context, logger *slog.Logger, channel string) (int, error) {
	reset, err := r.store.ResetStuck(ctx, channel)
	if err != nil {
		return 0, err
	}
	if reset > 0 {
		logger.Info("reset stuck items", logging.Int64("count", reset))
	}

	transcribed := 0
	for {
		if err := ctx.Err(); err != nil {
			return transcribed, err
		}

		batch, err := r.selectBatch(ctx, channel)
		if err != nil {
			return transcribed, err
		}
		if len(batch) == 0 {
			return transcribed, nil
		}

		var toFetch, toTranscribe []*queue.Item
		for _, item := range batch {
			if item.Status == queue.StatusDownloaded {
				toTranscribe = append(toTranscribe, item)
			} else {
				toFetch = append(toFetch, item)
			}
		}

		fetched, err := r.fetcher.FetchBatch(services.WithStage(ctx, "fetch"), toFetch)
		if err != nil && !errors.Is(err, context.Canceled) {
			return transcribed, err
		}
		toTranscribe = append(toTranscribe, fetched...)

		done, err := r.transcriber.TranscribeBatch(services.WithStage(ctx, "transcribe"), toTranscribe)
		transcribed += done
		if err != nil {
			return transcribed, err
		}

		// A batch where nothing advanced means every remaining item is
		// failing; stop instead of spinning on them.
		if done == 0 && len(fetched) == 0 {
			return transcribed, nil
		}
	}
}

// selectBatch picks up to cfg.Pipeline.BatchSize workable items, shortest
// first, dropping items outside the configured duration bounds.
func (r *Runner) selectBatch(ctx context.Context, channel string) ([]*queue.Item, error) {
	items, err := r.store.ItemsByStatus(ctx, channel, queue.StatusPending, queue.StatusDownloaded)
	if err != nil {
		return nil, err
	}

	batch := make([]*queue.Item, 0, r.cfg.Pipeline.BatchSize)
	for _, item := range items {
		if !r.withinDurationBounds(item) {
			continue
		}
		batch = append(batch, item)
		if len(batch) >= r.cfg.Pipeline.BatchSize {
			break
		}
	}
	return batch, nil
}

func (r *Runner) withinDurationBounds(item *queue.Item) bool {
	if min := r.cfg.Transcribe.MinDurationSeconds; min > 0 && item.DurationSec < int64(min) {
		return false
	}
	if max := r.cfg.Transcribe.MaxDurationSeconds; max > 0 && item.DurationSec > int64(max) {
		return false
	}
	return true
}

// FetchOnly downloads the channel's pending backlog without transcribing.
func (r *Runner) FetchOnly(ctx context.Context, channel string) (int, error) {
	lock, err := r.acquireLock()
	if err != nil {
		return 0, err
	}
	defer func() { _ = lock.Unlock() }()

	if _, err := r.store.ResetStuck(ctx, channel); err != nil {
		return 0, err
	}
	items, err := r.store.ItemsByStatus(ctx, channel, queue.StatusPending)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoBacklog, channel)
	}

	fetched, err := r.fetcher.FetchBatch(ctx, items)
	return len(fetched), err
}

// TranscribeOnly transcribes already-downloaded items without fetching.
func (r *Runner) TranscribeOnly(ctx context.Context, channel string) (int, error) {
	lock, err := r.acquireLock()
	if err != nil {
		return 0, err
	}
	defer func() { _ = lock.Unlock() }()

	if _, err := r.store.ResetStuck(ctx, channel); err != nil {
		return 0, err
	}
	items, err := r.store.ItemsByStatus(ctx, channel, queue.StatusDownloaded)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoBacklog, channel)
	}

	return r.transcriber.TranscribeBatch(ctx, items)
}
