package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/services"
	"scribe/internal/services/whisper"
	"scribe/internal/textutil"
	"scribe/internal/transcript"
)

// Engine produces a transcription for one audio file.
type Engine interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (whisper.Result, error)
	Model() string
}

// Transcriber runs the transcription stage against the store.
type Transcriber struct {
	store  *queue.Store
	engine Engine
	cfg    *config.Config
	logger *slog.Logger
}

// NewTranscriber creates a transcription stage.
func NewTranscriber(store *queue.Store, engine Engine, cfg *config.Config, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		store:  store,
		engine: engine,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "transcribe"),
	}
}

// TranscribeBatch processes items serially and returns how many completed.
// Per-item failures are recorded in the store and never abort the batch.
func (t *Transcriber) TranscribeBatch(ctx context.Context, items []*queue.Item) (int, error) {
	completed := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		if err := t.TranscribeOne(ctx, item); err != nil {
			continue
		}
		completed++
	}
	return completed, nil
}

// TranscribeOne transcribes a single downloaded item. On success the item is
// marked completed and its raw audio removed (unless configured otherwise);
// on failure the item is marked errored and the audio retained for retry.
func (t *Transcriber) TranscribeOne(ctx context.Context, item *queue.Item) error {
	ctx = services.WithVideoID(ctx, item.VideoID)
	logger := logging.WithContext(ctx, t.logger).With(
		logging.String(logging.FieldChannel, item.Channel),
	)

	if item.AudioPath == "" {
		err := fmt.Errorf("no audio path recorded for %s", item.VideoID)
		t.recordFailure(ctx, logger, item, err)
		return err
	}
	if _, err := os.Stat(item.AudioPath); err != nil {
		err = fmt.Errorf("audio file missing: %w", err)
		t.recordFailure(ctx, logger, item, err)
		return err
	}

	if err := t.store.MarkTranscribing(ctx, item.VideoID); err != nil {
		return err
	}

	started := time.Now()
	result, err := t.engine.Transcribe(ctx, item.AudioPath, filepath.Dir(item.AudioPath))
	if err != nil {
		t.recordFailure(ctx, logger, item, err)
		return err
	}

	artifactPath, err := t.writeArtifact(item, result)
	if err != nil {
		t.recordFailure(ctx, logger, item, err)
		return err
	}

	if err := t.store.MarkCompleted(ctx, item.VideoID, artifactPath); err != nil {
		return err
	}

	logger.Info("video transcribed",
		logging.Duration("elapsed", time.Since(started)),
		logging.String("transcript_path", artifactPath),
		logging.String("device", result.Device),
	)

	t.cleanupAudio(logger, item.AudioPath)
	return nil
}

func (t *Transcriber) writeArtifact(item *queue.Item, result whisper.Result) (string, error) {
	segments := make([]transcript.Segment, 0, len(result.Segments))
	for _, segment := range result.Segments {
		segments = append(segments, transcript.Segment{StartSec: segment.Start, Text: segment.Text})
	}

	doc := transcript.Document{
		VideoID:     item.VideoID,
		Title:       item.Title,
		Model:       t.engine.Model(),
		Device:      result.Device,
		Language:    result.Language,
		GeneratedAt: time.Now(),
		Text:        result.Text,
		Segments:    segments,
	}

	destDir := filepath.Join(t.cfg.Paths.TranscriptDir, textutil.SanitizeChannel(item.Channel))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure transcript dir: %w", err)
	}

	artifactPath := filepath.Join(destDir, transcript.FileName(item.Title, item.VideoID))
	if err := os.WriteFile(artifactPath, []byte(doc.Render()), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return artifactPath, nil
}

func (t *Transcriber) recordFailure(ctx context.Context, logger *slog.Logger, item *queue.Item, cause error) {
	logger.Error("transcription failed", logging.Error(cause))
	if err := t.store.MarkError(ctx, item.VideoID, cause.Error()); err != nil {
		logger.Error("mark error", logging.Error(err))
	}
}

// cleanupAudio removes the raw audio and the engine's JSON sidecar once the
// artifact is safely on disk.
func (t *Transcriber) cleanupAudio(logger *slog.Logger, audioPath string) {
	if !t.cfg.Transcribe.DeleteAudio {
		return
	}
	if err := os.Remove(audioPath); err != nil {
		logger.Warn("could not remove audio file", logging.Error(err))
	}
	base := audioPath[:len(audioPath)-len(filepath.Ext(audioPath))]
	if err := os.Remove(base + ".json"); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not remove engine output", logging.Error(err))
	}
}
