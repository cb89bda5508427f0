package dispatch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/textutil"
	"scribe/internal/transcript"
)

// ErrNothingToDispatch indicates the channel has no downloaded audio waiting.
var ErrNothingToDispatch = errors.New("no downloaded items to dispatch")

// Job is the payload pushed onto the remote job queue. Audio is base64 so
// the whole job travels as one JSON value.
type Job struct {
	JobID   string `json:"job_id"`
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Audio   string `json:"audio"`
}

// Result is what a remote worker pushes to the per-job result key.
type Result struct {
	JobID       string  `json:"job_id"`
	VideoID     string  `json:"video_id"`
	Transcript  string  `json:"transcript"`
	DurationSec float64 `json:"duration"`
	Error       string  `json:"error,omitempty"`
}

// RedisClient is the subset of go-redis used by the dispatcher.
type RedisClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Report summarizes one dispatch.
type Report struct {
	Channel   string
	Submitted int
	Completed int
	Failed    int
}

type submission struct {
	item  *queue.Item
	jobID string
}

// Dispatcher submits downloaded audio to remote workers and collects their
// transcripts.
type Dispatcher struct {
	store  *queue.Store
	cfg    *config.Config
	client RedisClient
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher using the given Redis client.
func NewDispatcher(store *queue.Store, cfg *config.Config, client RedisClient, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, "dispatch"),
	}
}

// NewRedisClient builds the real Redis connection from configuration.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.Remote.RedisAddr,
		DB:   cfg.Remote.RedisDB,
	})
}

func resultKey(jobID string) string {
	return "scribe:results:" + jobID
}

// Dispatch resolves the channel, submits every downloaded item, then gathers
// results in submission order.
func (d *Dispatcher) Dispatch(ctx context.Context, channelRef string) (*Report, error) {
	channels, err := d.store.Channels(ctx)
	if err != nil {
		return nil, err
	}
	channel, err := ResolveChannel(channelRef, channels)
	if err != nil {
		return nil, err
	}

	items, err := d.store.ItemsByStatus(ctx, channel, queue.StatusDownloaded)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToDispatch, channel)
	}
	if max := d.cfg.Remote.MaxItems; max > 0 && len(items) > max {
		items = items[:max]
	}

	report := &Report{Channel: channel}
	submissions := d.submitAll(ctx, items, report)
	d.gather(ctx, submissions, report)

	d.logger.Info("dispatch finished",
		logging.String(logging.FieldChannel, channel),
		logging.Int("submitted", report.Submitted),
		logging.Int("completed", report.Completed),
		logging.Int("failed", report.Failed),
	)
	return report, nil
}

// submitAll pushes every job before any result is read, keeping the remote
// pool busy the whole time.
func (d *Dispatcher) submitAll(ctx context.Context, items []*queue.Item, report *Report) []submission {
	submissions := make([]submission, 0, len(items))
	for _, item := range items {
		logger := d.logger.With(logging.String(logging.FieldVideoID, item.VideoID))

		audio, err := os.ReadFile(item.AudioPath)
		if err != nil {
			logger.Error("read audio", logging.Error(err))
			report.Failed++
			continue
		}

		job := Job{
			JobID:   uuid.NewString(),
			VideoID: item.VideoID,
			Title:   item.Title,
			Audio:   base64.StdEncoding.EncodeToString(audio),
		}
		payload, err := json.Marshal(job)
		if err != nil {
			logger.Error("marshal job", logging.Error(err))
			report.Failed++
			continue
		}

		if err := d.client.LPush(ctx, d.cfg.Remote.JobQueue, payload).Err(); err != nil {
			logger.Error("submit job", logging.Error(err))
			report.Failed++
			continue
		}

		logger.Info("job submitted", logging.String("job_id", job.JobID))
		submissions = append(submissions, submission{item: item, jobID: job.JobID})
		report.Submitted++
	}
	return submissions
}

func (d *Dispatcher) gather(ctx context.Context, submissions []submission, report *Report) {
	timeout := time.Duration(d.cfg.Remote.ResultTimeoutSeconds) * time.Second
	for _, sub := range submissions {
		logger := d.logger.With(
			logging.String(logging.FieldVideoID, sub.item.VideoID),
			logging.String("job_id", sub.jobID),
		)

		reply, err := d.client.BRPop(ctx, timeout, resultKey(sub.jobID)).Result()
		if err != nil {
			logger.Error("await result", logging.Error(err))
			report.Failed++
			continue
		}
		// BRPOP replies [key, value].
		if len(reply) < 2 {
			logger.Error("malformed result reply")
			report.Failed++
			continue
		}

		var result Result
		if err := json.Unmarshal([]byte(reply[1]), &result); err != nil {
			logger.Error("parse result", logging.Error(err))
			report.Failed++
			continue
		}
		if result.Error != "" {
			logger.Error("remote transcription failed", logging.String("remote_error", result.Error))
			report.Failed++
			continue
		}

		artifactPath, err := d.writeArtifact(sub.item, result)
		if err != nil {
			logger.Error("write artifact", logging.Error(err))
			report.Failed++
			continue
		}
		if err := d.store.MarkCompleted(ctx, sub.item.VideoID, artifactPath); err != nil {
			logger.Error("mark completed", logging.Error(err))
			report.Failed++
			continue
		}

		if d.cfg.Transcribe.DeleteAudio {
			if err := os.Remove(sub.item.AudioPath); err != nil {
				logger.Warn("could not remove audio file", logging.Error(err))
			}
		}
		logger.Info("remote transcript stored", logging.String("transcript_path", artifactPath))
		report.Completed++
	}
}

func (d *Dispatcher) writeArtifact(item *queue.Item, result Result) (string, error) {
	doc := transcript.Document{
		VideoID:     item.VideoID,
		Title:       item.Title,
		Model:       d.cfg.Whisper.Model,
		Device:      "remote",
		Language:    d.cfg.Whisper.Language,
		GeneratedAt: time.Now(),
		Text:        result.Transcript,
	}

	destDir := filepath.Join(d.cfg.Paths.TranscriptDir, textutil.SanitizeChannel(item.Channel))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure transcript dir: %w", err)
	}
	artifactPath := filepath.Join(destDir, transcript.FileName(item.Title, item.VideoID))
	if err := os.WriteFile(artifactPath, []byte(doc.Render()), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return artifactPath, nil
}
